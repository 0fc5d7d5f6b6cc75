package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type QueuedItemStoppedReason string

const (
	QueuedItemStoppedReasonFinished    QueuedItemStoppedReason = "finished"
	QueuedItemStoppedReasonInterrupted QueuedItemStoppedReason = "interrupted"
	QueuedItemStoppedReasonError       QueuedItemStoppedReason = "error"
)

type HostClientCallbacks struct {
	ClientQueueCountChanged func(*HostClient, int)
	QueuedItemStarted       func(*HostClient, *QueueItem)
	QueuedItemStopped       func(*HostClient, *QueueItem, QueuedItemStoppedReason)
	QueuedItemDataAvailable func(*HostClient, *QueueItem, *PromptMessageData)
}

// HostClient is the top level object that allows for interaction with a
// running generation host over its HTTP and websocket endpoints.
type HostClient struct {
	serverBaseAddress string
	serverAddress     string
	serverPort        int
	clientid          string
	catalog           map[string]*NodeObjectInfo
	initialized       bool
	queueditems       map[string]*QueueItem
	queuecount        int
	callbacks         *HostClientCallbacks
	lastPromptID      string
	timeout           int
	webSocket         *WebSocketConnection
	httpclient        *http.Client
}

// NewHostClientWithTimeout creates a new host client with a connection
// timeout in seconds. A negative timeout waits indefinitely.
func NewHostClientWithTimeout(server_address string, server_port int, callbacks *HostClientCallbacks, timeout int) *HostClient {
	sbaseaddr := server_address + ":" + strconv.Itoa(server_port)
	cid := uuid.New().String()
	retv := &HostClient{
		serverBaseAddress: sbaseaddr,
		serverAddress:     server_address,
		serverPort:        server_port,
		clientid:          cid,
		queueditems:       make(map[string]*QueueItem),
		initialized:       false,
		queuecount:        0,
		callbacks:         callbacks,
		timeout:           timeout,
		httpclient:        &http.Client{},
	}
	return retv
}

// NewHostClient creates a new host client
func NewHostClient(server_address string, server_port int, callbacks *HostClientCallbacks) *HostClient {
	return NewHostClientWithTimeout(server_address, server_port, callbacks, -1)
}

// IsInitialized returns true if the client's websocket is connected and the
// node class catalog has been retrieved
func (c *HostClient) IsInitialized() bool {
	return c.initialized
}

// CheckConnection initializes the client if it has not been initialized yet
func (c *HostClient) CheckConnection() error {
	if !c.IsInitialized() {
		// try to initialize first
		err := c.Init()
		if err != nil {
			return err
		}
	}
	return nil
}

// Init retrieves the node class catalog from the host and starts the
// websocket connection
func (c *HostClient) Init() error {
	catalog, err := c.GetObjectInfos()
	if err != nil {
		return err
	}
	c.catalog = catalog

	c.webSocket = &WebSocketConnection{
		WebSocketURL:   fmt.Sprintf("ws://%s/ws?clientId=%s", c.serverBaseAddress, c.clientid),
		ConnectionDone: make(chan bool),
		MaxRetry:       5,
		Callback:       c,
		BaseDelay:      time.Second,
		MaxDelay:       time.Minute,
	}
	err = c.webSocket.ConnectWithManager(c.timeout)
	if err != nil {
		return err
	}

	c.initialized = true
	return nil
}

// ClientID returns the unique client ID for the connection to the host
func (c *HostClient) ClientID() string {
	return c.clientid
}

// return the underlying http client
func (c *HostClient) HttpClient() *http.Client {
	return c.httpclient
}

// set the underlying http client
func (c *HostClient) SetHttpClient(client *http.Client) {
	c.httpclient = client
}

// HasNodeClass reports whether the host advertises the given node class.
// The catalog is fetched during Init.
func (c *HostClient) HasNodeClass(class_type string) bool {
	_, ok := c.catalog[class_type]
	return ok
}

// NodeClass returns the catalog entry for one node class, or nil when the
// host does not advertise it.
func (c *HostClient) NodeClass(class_type string) *NodeObjectInfo {
	return c.catalog[class_type]
}

// SupportsGraphExpansion is true for remote submission: composed expansion
// graphs are inlined into the prompt body, which every host accepts.
func (c *HostClient) SupportsGraphExpansion() bool {
	return true
}

// GetQueuedItem returns a QueueItem that was queued with this client and has
// not been processed yet or is currently being processed. Once a QueueItem
// has been processed, it will not be available with this method.
func (c *HostClient) GetQueuedItem(prompt_id string) *QueueItem {
	val, ok := c.queueditems[prompt_id]
	if ok {
		return val
	}
	return nil
}

// OnMessage implements WebSocketCallback. Each message received from the
// websocket connection is parsed, matched to the queued item it concerns and
// translated into a PromptMessage on that item's message channel.
func (c *HostClient) OnMessage(msg string) {
	message := &WSStatusMessage{}
	err := json.Unmarshal([]byte(msg), &message)
	if err != nil {
		slog.Error("Deserializing status message:", "error", err)
		return
	}

	// progress and status messages do not always carry a prompt id, fall
	// back to the prompt the host most recently started
	pid := message.PromptID()
	if pid == "" {
		pid = c.lastPromptID
	}

	c.webSocket.LockRead()
	qi := c.queueditems[pid]
	c.webSocket.UnlockRead()

	c.routeMessage(message, qi)
}

func (c *HostClient) routeMessage(message *WSStatusMessage, qi *QueueItem) {
	switch message.Type {
	case "status":
		s := message.Data.(*WSMessageDataStatus)
		c.queuecount = s.Status.ExecInfo.QueueRemaining
		if c.callbacks != nil && c.callbacks.ClientQueueCountChanged != nil {
			c.callbacks.ClientQueueCountChanged(c, s.Status.ExecInfo.QueueRemaining)
		}
	case "execution_start":
		s := message.Data.(*WSMessageDataExecutionStart)
		// update lastPromptID to indicate we are processing a new prompt
		c.lastPromptID = s.PromptID
		if qi != nil {
			if c.callbacks != nil && c.callbacks.QueuedItemStarted != nil {
				c.callbacks.QueuedItemStarted(c, qi)
			}
			qi.Messages <- PromptMessage{
				Type: "started",
				Message: &PromptMessageStarted{
					PromptID: qi.PromptID,
				},
			}
		}
	case "execution_cached":
		// nodes served from the host cache produce no executing messages
	case "executing":
		s := message.Data.(*WSMessageDataExecuting)
		if qi == nil {
			return
		}
		if s.Node == nil {
			// the final node was processed
			c.finishQueuedItem(qi, QueuedItemStoppedReasonFinished, nil)
			return
		}
		qi.Messages <- PromptMessage{
			Type: "executing",
			Message: &PromptMessageExecuting{
				NodeID: *s.Node,
				Title:  qi.NodeTitle(*s.Node),
			},
		}
	case "progress":
		s := message.Data.(*WSMessageDataProgress)
		if qi != nil {
			qi.Messages <- PromptMessage{
				Type: "progress",
				Message: &PromptMessageProgress{
					Value: s.Value,
					Max:   s.Max,
				},
			}
		}
	case "executed":
		s := message.Data.(*WSMessageDataExecuted)
		if qi != nil {
			mdata := &PromptMessageData{
				NodeID: s.Node,
				Data:   s.Output,
			}
			if c.callbacks != nil && c.callbacks.QueuedItemDataAvailable != nil {
				c.callbacks.QueuedItemDataAvailable(c, qi, mdata)
			}
			qi.Messages <- PromptMessage{
				Type:    "data",
				Message: mdata,
			}
		}
	case "execution_interrupted":
		if qi != nil {
			c.finishQueuedItem(qi, QueuedItemStoppedReasonInterrupted, nil)
		}
	case "execution_error":
		s := message.Data.(*WSMessageExecutionError)
		if qi != nil {
			c.finishQueuedItem(qi, QueuedItemStoppedReasonError, &PromptMessageStoppedException{
				NodeID:           s.Node,
				NodeType:         s.NodeType,
				NodeName:         qi.NodeTitle(s.Node),
				ExceptionMessage: s.ExceptionMessage,
				ExceptionType:    s.ExceptionType,
				Traceback:        s.Traceback,
			})
		}
	default:
		slog.Warn("Unhandled message type:", "type", message.Type)
	}
}

// finishQueuedItem removes the item from the queue and delivers its final
// stopped message. No other messages are sent to the channel after this.
func (c *HostClient) finishQueuedItem(qi *QueueItem, reason QueuedItemStoppedReason, exception *PromptMessageStoppedException) {
	if c.callbacks != nil && c.callbacks.QueuedItemStopped != nil {
		c.callbacks.QueuedItemStopped(c, qi, reason)
	}

	c.webSocket.LockRead()
	delete(c.queueditems, qi.PromptID)
	c.webSocket.UnlockRead()

	qi.Messages <- PromptMessage{
		Type: "stopped",
		Message: &PromptMessageStopped{
			QueueItem: qi,
			Exception: exception,
		},
	}
	qi.Close()
}
