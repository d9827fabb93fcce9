package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/peragwin/vuzicshader/audio/sensors/onset"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

type CanopyMessageType int

const (
	BangMessageType   = 0
	ScalarMessageType = 1
)

type CanopyMessage struct {
	MessageType CanopyMessageType `json:"message_type"`
	Position    Vec3              `json:"position"`
	Value       float64           `json:"value"`
}

func NewCanopyMessage(typ CanopyMessageType, pos Vec3, val float64) *CanopyMessage {
	return &CanopyMessage{MessageType: typ, Position: pos, Value: val}
}

func (c *CanopyMessage) publish(client mqtt.Client, topic string) error {
	bs, err := json.Marshal(c)
	if err != nil {
		return err
	}
	token := client.Publish(topic, 0, false, string(bs))
	token.WaitTimeout(time.Millisecond * 10)
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

type Entity struct {
	Position Vec3
}

type bang struct {
	topic string
	msg   *CanopyMessage
}

// Nocturne publishes onsets as "bangs" to an mqtt broker. Publishing happens on its
// own goroutine so the render loop never waits on the network.
type Nocturne struct {
	client   mqtt.Client
	entities []Entity
	bangs    chan bang
	stop     chan struct{}
	done     chan struct{}
	closer   sync.Once
}

func NewNocturne(ctx context.Context, broker, entitiesPath string) (*Nocturne, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	brokerurl, err := url.Parse(broker)
	if err != nil {
		return nil, err
	}
	entities, err := loadEntities(entitiesPath)
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(&mqtt.ClientOptions{
		Servers:  []*url.URL{brokerurl},
		ClientID: fmt.Sprintf("visualizer-%s", hostname),
	})
	conn := client.Connect()
	conn.Wait()
	if err := conn.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	glog.Infof("connected to mqtt broker %s", broker)

	n := &Nocturne{
		client:   client,
		entities: entities,
		bangs:    make(chan bang, 32),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go n.publisher(ctx)
	return n, nil
}

// loadEntities reads entity positions. Without a file every bang is sent from the origin.
func loadEntities(path string) ([]Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entity{{}}, nil
		}
		return nil, err
	}
	defer f.Close()

	var data []struct{ Position []float64 }
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("entities %s: %w", path, err)
	}
	entities := make([]Entity, 0, len(data))
	for _, e := range data {
		p := e.Position
		if len(p) != 3 {
			return nil, fmt.Errorf("entities %s: position needs 3 coordinates, got %d", path, len(p))
		}
		entities = append(entities, Entity{Position: NewVec3(p[0], p[1], p[2])})
	}
	if len(entities) == 0 {
		entities = append(entities, Entity{})
	}
	return entities, nil
}

// bangFor builds the message for an onset. The entity is picked from the onset's
// sequence number, so replays publish the same positions.
func bangFor(ev onset.Event, entities []Entity) bang {
	pos := entities[int(ev.Seq%uint64(len(entities)))].Position
	return bang{
		topic: "vuzic/bangs/" + ev.Band.String(),
		msg:   NewCanopyMessage(BangMessageType, pos, ev.Intensity),
	}
}

// Bang queues the onsets for publishing, dropping them when the broker falls behind.
func (n *Nocturne) Bang(events []onset.Event) {
	for _, ev := range events {
		select {
		case n.bangs <- bangFor(ev, n.entities):
		default:
			if glog.V(2) {
				glog.Infof("nocturne: dropped %s bang", ev.Band)
			}
		}
	}
}

func (n *Nocturne) publisher(ctx context.Context) {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stop:
			return
		case b := <-n.bangs:
			if err := b.msg.publish(n.client, b.topic); err != nil {
				glog.Errorf("nocturne: %v", err)
			}
		}
	}
}

// Close stops the publisher and disconnects from the broker.
func (n *Nocturne) Close() {
	n.closer.Do(func() { close(n.stop) })
	<-n.done
	n.client.Disconnect(250)
}
