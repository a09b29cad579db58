package serializer

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// DefaultDriftSubject is where NATSReporter publishes when no subject is given.
const DefaultDriftSubject = "restrepo.drift"

// Publisher is the part of *nats.Conn NATSReporter needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSReporter publishes each warning as JSON so schema drift between client
// and server can be watched from outside the process.
type NATSReporter struct {
	publisher Publisher
	subject   string
	logger    restrepo.Logger
	now       func() time.Time
}

type driftEvent struct {
	Warning
	Time time.Time `json:"time"`
}

// NewNATSReporter creates a NATSReporter on an existing connection. Publish
// failures are logged, never returned.
func NewNATSReporter(publisher Publisher, subject string, logger restrepo.Logger) (*NATSReporter, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	if subject == "" {
		subject = DefaultDriftSubject
	}

	if logger == nil {
		logger = restrepo.NopLogger{}
	}

	return &NATSReporter{
		publisher: publisher,
		subject:   subject,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// ConnectNATSReporter dials url and returns a reporter together with a
// function that drains and closes the connection.
func ConnectNATSReporter(url, subject string, logger restrepo.Logger) (*NATSReporter, func(), error) {
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Name("restrepo"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS server: %w", err)
	}

	reporter, err := NewNATSReporter(nc, subject, logger)
	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	return reporter, func() { _ = nc.Drain() }, nil
}

// Subject returns the subject warnings are published to.
func (r *NATSReporter) Subject() string {
	return r.subject
}

// Report implements Reporter.
func (r *NATSReporter) Report(w Warning) {
	data, err := json.Marshal(driftEvent{Warning: w, Time: r.now().UTC()})
	if err != nil {
		r.logger.Error("marshal drift event", map[string]interface{}{"error": err.Error()})

		return
	}

	err = r.publisher.Publish(r.subject, data)
	if err != nil {
		r.logger.Warn("publish drift event", map[string]interface{}{
			"subject": r.subject,
			"error":   err.Error(),
		})
	}
}
