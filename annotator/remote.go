package annotator

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowanvale/auxpack/client"
	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/imaging"
)

// RemoteBackend serves model-backed detectors by queueing a small graph on a
// host that has the wrapped models installed: LoadImage into the detector
// class into SaveImage. Each input frame round trips through the host's
// input and output folders.
type RemoteBackend struct {
	client *client.HostClient
}

func NewRemoteBackend(c *client.HostClient) *RemoteBackend {
	return &RemoteBackend{client: c}
}

func (r *RemoteBackend) Name() string {
	return "remote"
}

func (r *RemoteBackend) Detect(ctx context.Context, task Task) (*Detection, error) {
	if task.Image == nil {
		return nil, errors.New("remote detect: no input image")
	}
	if err := r.client.CheckConnection(); err != nil {
		return nil, err
	}
	if !r.client.HasNodeClass(task.Detector) {
		return nil, fmt.Errorf("host does not provide node class %s", task.Detector)
	}

	var out *imaging.Image
	var aux []map[string][]client.DataOutput
	for b := 0; b < task.Image.Batch; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, extras, err := r.detectFrame(ctx, task, b)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", b, err)
		}
		if out == nil {
			out = imaging.New(task.Image.Batch, frame.Height, frame.Width, frame.Channels)
		} else if frame.Height != out.Height || frame.Width != out.Width || frame.Channels != out.Channels {
			return nil, fmt.Errorf("frame %d: detector output %s does not match batch %s", b, frame, out)
		}
		copy(out.Frame(b).Pix, frame.Pix)
		if len(extras) > 0 {
			aux = append(aux, extras)
		}
	}

	det := &Detection{Image: out}
	if len(aux) > 0 {
		det.Aux = aux
	}
	return det, nil
}

// detectFrame uploads one frame, executes the detector on the host and
// downloads the resulting hint map.
func (r *RemoteBackend) detectFrame(ctx context.Context, task Task, frame int) (*imaging.Image, map[string][]client.DataOutput, error) {
	var encoded bytes.Buffer
	if err := imaging.EncodePNG(&encoded, task.Image, frame); err != nil {
		return nil, nil, err
	}
	upload := fmt.Sprintf("aux_%s.png", uuid.New().String())
	stored, err := r.client.UploadFileFromReader(&encoded, upload, true, client.InputImageType, "")
	if err != nil {
		return nil, nil, err
	}

	b := graphapi.NewBuilder()
	load := b.Node("LoadImage", map[string]interface{}{
		"image":  stored,
		"upload": "image",
	})
	inputs := map[string]interface{}{
		"image": load.Out(0),
	}
	if task.Resolution > 0 {
		inputs["resolution"] = task.Resolution
	}
	if task.Model != "" {
		inputs["model"] = task.Model
	}
	for k, v := range task.Params {
		inputs[k] = v
	}
	detector := b.Node(task.Detector, inputs)
	b.Node("SaveImage", map[string]interface{}{
		"images":          detector.Out(0),
		"filename_prefix": "aux_remote",
	})

	item, err := r.client.QueuePrompt(b.Graph())
	if err != nil {
		return nil, nil, err
	}

	// non image outputs, pose keypoints for example, are kept as aux data
	extras := make(map[string][]client.DataOutput)
	var images []client.DataOutput
	handlers := &client.MessageHandlers{
		OnData: func(msg *client.PromptMessageData) {
			for k, outs := range msg.Data {
				if k == "images" {
					images = append(images, outs...)
					continue
				}
				extras[k] = append(extras[k], outs...)
			}
		},
	}

	errc := make(chan error, 1)
	go func() {
		errc <- item.ProcessMessages(handlers)
	}()
	select {
	case <-ctx.Done():
		r.client.Interrupt()
		<-errc
		return nil, nil, ctx.Err()
	case err := <-errc:
		if err != nil {
			return nil, nil, err
		}
	}

	if len(images) == 0 {
		return nil, nil, fmt.Errorf("detector %s produced no image output", task.Detector)
	}
	data, err := r.client.GetImage(images[len(images)-1])
	if err != nil {
		return nil, nil, err
	}
	hint, err := imaging.Decode(bytes.NewReader(*data))
	if err != nil {
		return nil, nil, err
	}
	return hint, extras, nil
}
