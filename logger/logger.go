package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	AppLogger   *log.Logger
	ProxyLogger *log.Logger
	ErrorLogger *log.Logger

	logLevel     string
	appLogFile   *os.File
	proxyLogFile *os.File
)

// Init sets up the app and proxy file loggers under logDir. Errors always
// go to stderr as well; if a log file cannot be opened its stream is
// discarded rather than failing startup.
func Init(logDir, level string) error {
	Close()
	logLevel = strings.ToUpper(level)
	if logLevel == "" {
		logLevel = "INFO"
	}

	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	var appWriter io.Writer = io.Discard
	var proxyWriter io.Writer = io.Discard

	if err := os.MkdirAll(logDir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create log directory %s: %v. Logs will be discarded.", logDir, err)
	} else {
		var errOpen error
		appLogFile, errOpen = os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errOpen != nil {
			ErrorLogger.Printf("Failed to open app log file: %v. App logs will be discarded.", errOpen)
		} else {
			appWriter = appLogFile
		}
		proxyLogFile, errOpen = os.OpenFile(filepath.Join(logDir, "proxy.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errOpen != nil {
			ErrorLogger.Printf("Failed to open proxy log file: %v. Proxy logs will be discarded.", errOpen)
		} else {
			proxyWriter = proxyLogFile
		}
	}

	AppLogger = log.New(appWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)
	ProxyLogger = log.New(proxyWriter, "PROXY: ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

func Info(format string, v ...interface{}) {
	if AppLogger != nil && (logLevel == "INFO" || logLevel == "DEBUG") {
		AppLogger.Printf(format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if AppLogger != nil && logLevel == "DEBUG" {
		AppLogger.Printf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if AppLogger != nil && logLevel != "ERROR" {
		AppLogger.Printf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Print(message)
	}
}

func ProxyInfo(format string, v ...interface{}) {
	if ProxyLogger != nil && (logLevel == "INFO" || logLevel == "DEBUG") {
		ProxyLogger.Printf(format, v...)
	}
}

func ProxyDebug(format string, v ...interface{}) {
	if ProxyLogger != nil && logLevel == "DEBUG" {
		ProxyLogger.Printf(format, v...)
	}
}

func ProxyError(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if ProxyLogger != nil && proxyLogFile != nil {
		ProxyLogger.Print(message)
	}
}

func Close() {
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	if proxyLogFile != nil {
		proxyLogFile.Close()
		proxyLogFile = nil
	}
}
