package df

import "github.com/sirupsen/logrus"

// Log is the base entry for lib packages - replaced by SetLog once cmd has set up logging
var Log = logrus.NewEntry(logrus.StandardLogger())

func SetLog(log *logrus.Entry) {
	if log == nil {
		return
	}
	Log = log
}
