package serializer_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo/serializer"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

var sampleWarning = serializer.Warning{Serializer: "user", Direction: serializer.DirectionFromDTO, Key: "zip"}

func TestLogReporter(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	serializer.NewLogReporter(logger).Report(sampleWarning)

	require.Len(t, logger.logs, 1)
	assert.Equal(t, "warn", logger.logs[0]["level"])
	assert.Equal(t, map[string]interface{}{
		"serializer": "user",
		"direction":  "from_dto",
		"key":        "zip",
	}, logger.logs[0]["fields"])

	assert.NotPanics(t, func() { serializer.NewLogReporter(nil).Report(sampleWarning) })
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	ms := serializer.NewModelSerializer("user", serializer.Fields{}, serializer.WithLogger(logger))

	_, err := ms.FromDTO(map[string]any{"zip": "0150"})
	require.NoError(t, err)
	require.Len(t, logger.logs, 1)
	assert.Equal(t, "unmapped field skipped", logger.logs[0]["msg"])
}

func TestCollector_Reset(t *testing.T) {
	t.Parallel()

	collector := serializer.NewCollector()
	collector.Report(sampleWarning)

	warnings := collector.Warnings()
	warnings[0].Key = "changed"

	assert.Equal(t, "zip", collector.Warnings()[0].Key)

	collector.Reset()
	assert.Empty(t, collector.Warnings())
}

func TestMultiReporter(t *testing.T) {
	t.Parallel()

	first := serializer.NewCollector()
	second := serializer.NewCollector()

	var seen []string

	multi := serializer.MultiReporter{first, nil, second, serializer.ReporterFunc(func(w serializer.Warning) {
		seen = append(seen, w.String())
	})}
	multi.Report(sampleWarning)

	assert.Len(t, first.Warnings(), 1)
	assert.Len(t, second.Warnings(), 1)
	assert.Equal(t, []string{`user: no field for key "zip" (from_dto)`}, seen)
}

// fakePublisher records published messages.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)

	return p.err
}

func TestNATSReporter(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	reporter, err := serializer.NewNATSReporter(publisher, "", nil)
	require.NoError(t, err)
	assert.Equal(t, serializer.DefaultDriftSubject, reporter.Subject())

	reporter.Report(sampleWarning)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "restrepo.drift", publisher.subjects[0])

	var event map[string]any
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, "user", event["serializer"])
	assert.Equal(t, "from_dto", event["direction"])
	assert.Equal(t, "zip", event["key"])
	assert.NotEmpty(t, event["time"])
}

func TestNATSReporter_PublishFailureIsLogged(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	publisher := &fakePublisher{err: errors.New("nats: connection closed")}

	reporter, err := serializer.NewNATSReporter(publisher, "drift.users", logger)
	require.NoError(t, err)

	assert.NotPanics(t, func() { reporter.Report(sampleWarning) })
	require.Len(t, logger.logs, 1)
	assert.Equal(t, "warn", logger.logs[0]["level"])
	assert.Equal(t, "drift.users", logger.logs[0]["fields"].(map[string]interface{})["subject"])
}

func TestNewNATSReporter_RequiresPublisher(t *testing.T) {
	t.Parallel()

	_, err := serializer.NewNATSReporter(nil, "x", nil)
	require.ErrorIs(t, err, serializer.ErrPublisherRequired)
}
