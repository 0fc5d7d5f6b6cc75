package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/rowanvale/auxpack/graphapi"
)

/*
@routes.get("/Preprocessor")
@routes.get("/view")
@routes.get("/view_metadata/{folder_name}")
@routes.get("/system_stats")
@routes.get("/prompt")
@routes.get("/object_info")
@routes.get("/history")

@routes.post("/prompt")
@routes.post("/interrupt")
@routes.post("/history")
@routes.post("/upload/image")
*/

// GetPreprocessors retrieves the preprocessor names an aux pack on the host
// exposes through its /Preprocessor route. The first entry is the "none"
// passthrough sentinel.
func (c *HostClient) GetPreprocessors() ([]string, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/Preprocessor", c.serverBaseAddress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	retv := make([]string, 0)
	err = json.Unmarshal(body, &retv)
	if err != nil {
		return nil, err
	}

	return retv, nil
}

func (c *HostClient) GetSystemStats() (*SystemStats, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/system_stats", c.serverBaseAddress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	retv := &SystemStats{}
	err = json.Unmarshal(body, &retv)
	if err != nil {
		return nil, err
	}

	return retv, nil
}

func (c *HostClient) GetPromptHistoryByIndex() ([]PromptHistoryItem, error) {
	history, err := c.GetPromptHistoryByID()
	if err != nil {
		return nil, err
	}

	retv := make([]PromptHistoryItem, len(history))
	index := 0
	// the host does not recalculate the indicies of prompt history items,
	// so the indecies may not always be ordered 0..n
	// We'll create a slice out of the map items, and then sort them
	for _, h := range history {
		retv[index] = h
		index++
	}

	sort.Slice(retv, func(i, j int) bool {
		return retv[i].Index < retv[j].Index
	})

	return retv, nil
}

func (c *HostClient) GetPromptHistoryByID() (map[string]PromptHistoryItem, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/history", c.serverBaseAddress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// a history item stores the prompt as a positional array:
	// [
	// 	[0] index 		int,
	// 	[1] promptID 	string,
	// 	[2] prompt 		the node map that was queued,
	// 	[3] extra_data,
	//  [4] outputs     array of nodeIDs that have outputs
	// ]
	type internalOutputs struct {
		Images *[]DataOutput `json:"images"`
	}
	type internalPromptHistoryItem struct {
		Prompt  []interface{}              `json:"prompt"`
		Outputs map[string]internalOutputs `json:"outputs"`
	}

	body, _ := io.ReadAll(resp.Body)
	history := make(map[string]internalPromptHistoryItem)
	err = json.Unmarshal(body, &history)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]PromptHistoryItem)
	for k, ph := range history {
		if len(ph.Prompt) < 3 {
			continue
		}
		index, _ := ph.Prompt[0].(float64)

		// round trip the node map back through json to get a typed graph
		gdata, _ := json.Marshal(ph.Prompt[2])
		graph := graphapi.Graph{}
		if err := json.Unmarshal(gdata, &graph); err != nil {
			return nil, err
		}

		item := PromptHistoryItem{
			PromptID: k,
			Index:    int(index),
			Nodes:    graph,
			Outputs:  make(map[string][]DataOutput),
		}

		for nodeid, o := range ph.Outputs {
			if o.Images != nil {
				item.Outputs[nodeid] = *o.Images
			}
		}
		ret[k] = item
	}
	return ret, nil
}

// GetViewMetadata retrieves the '__metadata__' field of a model file in one
// of the host's model folders, controlnet among them.
func (c *HostClient) GetViewMetadata(folder string, file string) (string, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/view_metadata/%s?filename=%s", c.serverBaseAddress, folder, url.QueryEscape(file)))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return string(body), nil
}

// GetImage downloads one output referenced by a data message
func (c *HostClient) GetImage(image_data DataOutput) (*[]byte, error) {
	params := url.Values{}
	params.Add("filename", image_data.Filename)
	params.Add("subfolder", image_data.Subfolder)
	params.Add("type", image_data.Type)
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/view?%s", c.serverBaseAddress, params.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return &body, nil
}

func (c *HostClient) GetQueueExecutionInfo() (*QueueExecInfo, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/prompt", c.serverBaseAddress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	queue_exec := &QueueExecInfo{}
	err = json.Unmarshal(body, &queue_exec)
	if err != nil {
		return nil, err
	}

	return queue_exec, nil
}

// GetObjectInfos retrieves the node class catalog the host advertises.
func (c *HostClient) GetObjectInfos() (map[string]*NodeObjectInfo, error) {
	resp, err := c.httpclient.Get(fmt.Sprintf("http://%s/object_info", c.serverBaseAddress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	retv := make(map[string]*NodeObjectInfo)
	err = json.Unmarshal(body, &retv)
	if err != nil {
		return nil, err
	}

	// the catalog keys are the class names, mirror them into the entries
	for name, info := range retv {
		info.Name = name
	}
	return retv, nil
}

// QueuePrompt submits an executable graph to the host. The returned QueueItem
// carries the live message channel for the prompt's execution.
func (c *HostClient) QueuePrompt(graph graphapi.Graph) (*QueueItem, error) {
	err := c.CheckConnection()
	if err != nil {
		return nil, err
	}

	prompt := &graphapi.Prompt{
		ClientID: c.clientid,
		Nodes:    graph,
	}

	// prevent a race where the ws may provide messages about a queued item
	// before we add the item to our internal map
	c.webSocket.LockRead()
	defer c.webSocket.UnlockRead()

	data, err := json.Marshal(prompt)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpclient.Post(fmt.Sprintf("http://%s/prompt", c.serverBaseAddress), "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	// create the queue item
	item := &QueueItem{
		Graph:    graph,
		Messages: make(chan PromptMessage),
	}

	err = json.Unmarshal(body, &item)
	if err != nil || item.PromptID == "" {
		// the host reports validation failures as a prompt error document:
		// {"error": {"type": "prompt_no_outputs",
		//				"message": "Prompt has no outputs",
		//				"details": "",
		//				"extra_info": {}
		//			  },
		// "node_errors": []
		// }
		perror := &PromptErrorMessage{}
		if perr := json.Unmarshal(body, &perror); perr == nil && perror.Error.Message != "" {
			return nil, errors.New(perror.Error.Message)
		}
		if err == nil {
			err = fmt.Errorf("prompt was not queued: %s", string(body))
		}
		return nil, err
	}
	c.queueditems[item.PromptID] = item
	return item, nil
}

func (c *HostClient) Interrupt() error {
	resp, err := c.httpclient.Post(fmt.Sprintf("http://%s/interrupt", c.serverBaseAddress), "application/json", strings.NewReader("{}"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	io.ReadAll(resp.Body)
	return nil
}

func (c *HostClient) EraseHistory() error {
	data := "{\"clear\": \"clear\"}"
	resp, err := c.httpclient.Post(fmt.Sprintf("http://%s/history", c.serverBaseAddress), "application/json", strings.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	io.ReadAll(resp.Body)
	return nil
}

func (c *HostClient) EraseHistoryItem(promptID string) error {
	// the history post takes an array of IDs, we provide a single ID
	item := fmt.Sprintf("{\"delete\": [\"%s\"]}", promptID)
	resp, err := c.httpclient.Post(fmt.Sprintf("http://%s/history", c.serverBaseAddress), "application/json", strings.NewReader(item))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	io.ReadAll(resp.Body)
	return nil
}
