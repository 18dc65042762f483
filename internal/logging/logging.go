package logging

import (
	"net"
	"os"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is shared by every package of the server.
var Logger = logrus.New()

func init() {
	Logger.SetFormatter(&logrus.JSONFormatter{})
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(logrus.WarnLevel)
}

// Init sets the log level and, when logstashAddr is not empty, ships every
// entry to logstash over TCP as well.
func Init(level, logstashAddr string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	Logger.SetLevel(lvl)

	if logstashAddr == "" {
		return nil
	}
	conn, err := net.Dial("tcp", logstashAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to logstash at %s", logstashAddr)
	}
	hook := logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "yatube"}))
	Logger.Hooks.Add(hook)
	Logger.WithField("addr", logstashAddr).Info("Logstash hook installed")
	return nil
}
