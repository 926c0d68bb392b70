package utils

import (
	_ "embed"

	"github.com/gen2brain/beeep"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

//go:embed icon.png
var icon []byte

// ExpandTilde will resolve to the correct location on disk.
func ExpandTilde(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Debugf("Could not expand %s: %v", path, err)
		return path
	}
	return expanded
}

func SendNotification(enabled bool, title string, message string) {
	if enabled {
		if err := beeep.Notify(title, message, icon); err != nil {
			log.Warnf("Notification failed: %v", err)
		}
	}
}
