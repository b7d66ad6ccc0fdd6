// Command quickfastd runs a standalone multicast receiver that logs every
// payload it receives. It exists to exercise the app/config/multicast
// wiring end to end; real consumers embed core/multicast directly instead.
package main

import (
	"log"

	"github.com/searchktools/quickfast/app"
	"github.com/searchktools/quickfast/config"
	"github.com/searchktools/quickfast/core/multicast"
)

// loggingConsumer logs a one-line summary of every payload and never
// requests shutdown on its own.
type loggingConsumer struct {
	multicast.NopConsumer
}

func (loggingConsumer) ReceiverStarted() {
	log.Print("receiver started")
}

func (loggingConsumer) ConsumeBuffer(data []byte) bool {
	log.Printf("received %d bytes", len(data))
	return true
}

func (loggingConsumer) ReportCommunicationError(message string) bool {
	log.Printf("communication error: %s", message)
	return true
}

func (loggingConsumer) WantLog(level multicast.LogLevel) bool {
	return level <= multicast.LogInfo
}

func (loggingConsumer) LogMessage(level multicast.LogLevel, text string) {
	log.Printf("[%s] %s", level, text)
}

func main() {
	cfg := config.New()
	application := app.New(cfg)

	if err := application.Run(loggingConsumer{}); err != nil {
		log.Fatalf("quickfastd: %v", err)
	}
}
