package platform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type Hook struct {
	writer   *os.File
	logPath  string
	fileName string
	fileDate string
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(entry *logrus.Entry) error {
	timer := time.Now().Format("2006-01-02")
	line, _ := entry.String()
	// roll the log file when the date changes
	if h.fileDate != timer {
		h.fileDate = timer
		h.writer.Close()
		filepath := fmt.Sprintf("%s/%s", h.logPath, h.fileDate)
		err := os.MkdirAll(filepath, os.ModePerm)
		if err != nil {
			logrus.Error(err)
			return err
		}
		filename := fmt.Sprintf("%s/%s.log", filepath, h.fileName)
		h.writer, _ = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	}
	h.writer.Write([]byte(line))
	return nil
}

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
	newLog := fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message)

	b.WriteString(newLog)
	return b.Bytes(), nil
}

// InitFile attaches a daily-rolling file hook to the standard logger,
// used for the gin access log.
func InitFile(logPath string, fileName string) {
	logrus.SetFormatter(&LogFormatter{})
	timer := time.Now().Format("2006-01-02")
	err := os.MkdirAll(logPath, os.ModePerm)
	if err != nil {
		logrus.Error(err)
		return
	}
	filename := fmt.Sprintf("%s/%s-%s.log", logPath, timer, fileName)
	writer, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		logrus.Error(err)
		return
	}
	logrus.AddHook(&Hook{
		writer:   writer,
		logPath:  logPath,
		fileName: fileName,
		fileDate: timer,
	})
}

func InitAppLogger(logPath string, fileName string) *logrus.Logger {
	logger := logrus.New()

	timer := time.Now().Format("2006-01-02")
	err := os.MkdirAll(logPath, os.ModePerm)
	if err != nil {
		logrus.Error(err)
		return nil
	}
	filename := fmt.Sprintf("%s/%s-%s.log", logPath, timer, fileName)
	logFile, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		logrus.Error(err)
		return nil
	}
	logger.SetFormatter(&LogFormatter{})
	logger.SetOutput(io.MultiWriter(logFile, os.Stderr))
	return logger
}

var Logger = InitAppLogger("./log", "chatrelay")
