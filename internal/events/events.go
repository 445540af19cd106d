package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"beacon-alarm.klederson.com/internal/beacon"
)

// RangedMessage is published on <subject>.ranged for every ranged cycle.
type RangedMessage struct {
	Region  string          `json:"region"`
	Count   int             `json:"count"`
	Beacons []BeaconMessage `json:"beacons"`
	At      time.Time       `json:"at"`
}

// BeaconMessage is the wire form of one observation.
type BeaconMessage struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	RSSI     int16   `json:"rssi"`
	Distance float64 `json:"distance_m"`
}

// RegionMessage is published on <subject>.region for every region state
// determination.
type RegionMessage struct {
	Region string    `json:"region"`
	State  string    `json:"state"`
	At     time.Time `json:"at"`
}

// Publisher forwards beacon events to NATS.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials the NATS server at url. Events are published under subject.
func Connect(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("beacon-alarm"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// Handle publishes ev. Its signature matches beacon.Manager.Subscribe.
// Publish failures are logged; they never block scanning.
func (p *Publisher) Handle(ev beacon.Event) {
	var (
		subject string
		payload any
	)
	switch e := ev.(type) {
	case beacon.RangedEvent:
		msg := RangedMessage{
			Region:  e.Region.ID,
			Count:   len(e.Beacons),
			Beacons: make([]BeaconMessage, len(e.Beacons)),
			At:      e.At,
		}
		for i, b := range e.Beacons {
			msg.Beacons[i] = BeaconMessage{ID: b.ID, Name: b.Name, RSSI: b.RSSI, Distance: b.Distance}
		}
		subject, payload = p.subject+".ranged", msg
	case beacon.RegionStateEvent:
		subject = p.subject + ".region"
		payload = RegionMessage{Region: e.Region.ID, State: e.State.String(), At: e.At}
	default:
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.WithField("component", "events").WithError(err).Error("encode event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.WithFields(log.Fields{"component": "events", "subject": subject}).WithError(err).Warn("publish failed")
	}
}

// Flush waits until published events have reached the server.
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}

// Close drains pending events and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
