package daemon

import (
	"os"

	godaemon "github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
)

const (
	PidFileName = "afd.pid"
	LogFileName = "afd.log"
)

// Detach re-executes the process in the background. In the parent it returns
// parent=true and the caller should exit. In the child it returns a release
// function to call on shutdown; it also removes the PID file.
func Detach() (parent bool, release func(), err error) {
	ctx := &godaemon.Context{
		PidFileName: PidFileName,
		PidFilePerm: 0644,
		LogFileName: LogFileName,
		LogFilePerm: 0640,
		WorkDir:     "./",
		Umask:       027,
		Args:        append([]string{"[afd-daemon]"}, os.Args[1:]...),
	}

	child, err := ctx.Reborn()
	if err != nil {
		return false, nil, err
	}
	if child != nil {
		return true, nil, nil
	}

	log.Info("Daemon started")
	return false, func() {
		if err := ctx.Release(); err != nil {
			log.Warnf("Error releasing daemon context: %v", err)
		}
	}, nil
}
