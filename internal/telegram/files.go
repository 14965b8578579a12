package telegram

import (
	"github.com/go-telegram/bot/models"
)

// LargestPhoto returns the file id of the biggest size Telegram offers for a
// photo, or "" when there is none.
func LargestPhoto(sizes []models.PhotoSize) string {
	var (
		best     string
		bestArea int
	)
	for _, p := range sizes {
		if area := p.Width * p.Height; best == "" || area >= bestArea {
			best, bestArea = p.FileID, area
		}
	}
	return best
}
