package service

import (
	"testing"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

func TestRenderAnnouncementDefault(t *testing.T) {
	notification := &domain.StreamNotification{StreamerID: "tw1", GuildID: "g1", ChannelID: "c1"}
	got := renderAnnouncement(notification, "Riva", "https://stream.example/riva")
	want := "Riva is live! Watch at https://stream.example/riva"
	if got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestRenderAnnouncementCustomMessage(t *testing.T) {
	custom := "Drop everything, {streamer} is on: {url}"
	notification := &domain.StreamNotification{StreamerID: "tw1", GuildID: "g1", ChannelID: "c1", CustomMessage: &custom}
	got := renderAnnouncement(notification, "Riva", "https://stream.example/riva")
	want := "Drop everything, Riva is on: https://stream.example/riva"
	if got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestRenderAnnouncementAppendsURLWhenMissing(t *testing.T) {
	custom := "{streamer} went live!"
	notification := &domain.StreamNotification{StreamerID: "tw1", GuildID: "g1", ChannelID: "c1", CustomMessage: &custom}
	got := renderAnnouncement(notification, "Riva", "https://stream.example/riva")
	want := "Riva went live!\nhttps://stream.example/riva"
	if got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}
