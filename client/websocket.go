package client

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketCallback receives each raw message read from the socket
type WebSocketCallback interface {
	OnMessage(message string)
}

type WebSocketConnection struct {
	WebSocketURL   string
	Conn           *websocket.Conn
	ConnectionDone chan bool
	IsConnected    bool
	MaxRetry       int
	RetryCount     int
	mu             sync.Mutex // guards queue bookkeeping against message dispatch
	Callback       WebSocketCallback

	// Exponential backoff configuration
	BaseDelay time.Duration // The initial delay, e.g., 1 second
	MaxDelay  time.Duration // The maximum delay, e.g., 1 minute
	Dialer    websocket.Dialer
}

// ConnectWithManager dials the websocket and keeps retrying with exponential
// backoff until connected or MaxRetry attempts have failed. timeoutSeconds
// bounds the wait for the first successful connection, negative waits
// indefinitely and zero returns without waiting.
func (w *WebSocketConnection) ConnectWithManager(timeoutSeconds int) error {
	// Channel to signal successful connection
	connected := make(chan bool, 1)
	// Channel for connection attempts (ensures connect() is not called concurrently)
	attemptConnect := make(chan bool, 1)
	attemptConnect <- true // Trigger the first connection attempt immediately

	go func() {
		retries := 0
		for {
			select {
			case <-attemptConnect:
				err := w.connect()
				if err != nil {
					slog.Error("Connection attempt failed: ", "error", err)
					w.IsConnected = false

					retries++
					if retries > w.MaxRetry {
						slog.Error(fmt.Sprintf("Maximum number of retries reached (%d)", w.MaxRetry))
						close(connected) // Signal that the connection failed
						return
					}

					// Wait a bit before retrying to connect
					time.AfterFunc(w.getReconnectDelay(), func() {
						attemptConnect <- true
					})
				} else {
					w.IsConnected = true
					close(connected) // Signal that the connection was successful
					w.handleMessages()
					return
				}
			case <-w.ConnectionDone:
				return
			}
		}
	}()

	// Block until either a successful connection or timeout
	if timeoutSeconds > 0 {
		timeout := time.Duration(timeoutSeconds) * time.Second
		select {
		case <-connected:
		case <-time.After(timeout):
			return fmt.Errorf("connection timeout after %v", timeout)
		}
	} else if timeoutSeconds < 0 {
		// wait indefinitely
		<-connected
	}

	if timeoutSeconds != 0 && !w.IsConnected {
		return errors.New("websocket connection failed")
	}
	return nil
}

func (w *WebSocketConnection) connect() error {
	conn, _, err := w.Dialer.Dial(w.WebSocketURL, nil)
	if err != nil {
		return err
	}

	w.Conn = conn
	return nil
}

func (w *WebSocketConnection) Ping() error {
	return w.Conn.WriteMessage(websocket.PingMessage, nil)
}

// Close shuts the connection down and releases the manager goroutine if it
// is still waiting to retry
func (w *WebSocketConnection) Close() error {
	select {
	case w.ConnectionDone <- true:
	default:
	}
	if w.Conn != nil {
		return w.Conn.Close()
	}
	return nil
}

// Handle incoming WebSocket messages
func (w *WebSocketConnection) handleMessages() {
	defer func() {
		w.IsConnected = false
		w.Conn.Close()
	}()
	for {
		_, message, err := w.Conn.ReadMessage()
		if err != nil {
			slog.Warn(fmt.Sprintf("Read error: %v", err))
			break
		}
		if w.Callback != nil {
			w.Callback.OnMessage(string(message))
		}
	}
}

// exponential backoff calculation
func (w *WebSocketConnection) getReconnectDelay() time.Duration {
	// Calculate the delay as BaseDelay * 2^(RetryCount), capped at MaxDelay
	delay := w.BaseDelay * time.Duration(math.Pow(2, float64(w.RetryCount)))
	if delay > w.MaxDelay {
		delay = w.MaxDelay
	}
	w.RetryCount++ // Increment the retry counter for the next attempt
	return delay
}

func (w *WebSocketConnection) LockRead() {
	w.mu.Lock()
}

func (w *WebSocketConnection) UnlockRead() {
	w.mu.Unlock()
}
