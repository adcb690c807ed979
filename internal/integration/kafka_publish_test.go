//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/hechos-map-service/internal/adapter/source"
	"github.com/couchcryptid/hechos-map-service/internal/config"
	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/observability"
	"github.com/couchcryptid/hechos-map-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// publishedMessage holds a deserialized message read from the topic.
type publishedMessage struct {
	Event   domain.Event
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal message")

	return publishedMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func coord(f float64) *float64 { return &f }

// TestWriterPublish verifies that kafka.Writer round-trips a snapshot through
// a real broker with the provenance headers.
func TestWriterPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	const topic = "hechos-publish"
	createTopic(t, broker, topic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: topic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	loadedAt := time.Date(2021, 3, 7, 10, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		LoadID:   "load-1",
		LoadedAt: loadedAt,
		Events: []domain.Event{{
			ID: "101", Titulo: "Fuga de gas", Categoria: "Industrial",
			FechaAcontecimiento: "2021-03-05", Lat: coord(-34.6), Long: coord(-58.4),
		}},
	}
	require.NoError(t, writer.Publish(ctx, snap))

	msg := readPublished(ctx, t, newConsumer(t, broker, topic))
	assert.Equal(t, "101", msg.Key)
	assert.Equal(t, "Industrial", msg.Headers["categoria"])
	assert.Equal(t, "load-1", msg.Headers["load_id"])
	assert.Equal(t, loadedAt.Format(time.RFC3339), msg.Headers["loaded_at"])
	assert.Equal(t, snap.Events[0], msg.Event)
}

// TestPipelinePublishesLoadedCollection runs one load from a local file and
// checks that every retained event reaches the topic.
func TestPipelinePublishesLoadedCollection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	const topic = "hechos-pipeline"
	createTopic(t, broker, topic)

	doc := `[
		{"id": 1, "titulo": "Fuga", "categoria": "Industrial", "fecha": "05/03/2021", "lat": "-34,6", "long": "-58.4"},
		{"id": 2, "titulo": "Choque", "categoria": "Vial", "fecha": "2021-01-01", "lat": -35.1, "long": -57.9},
		{"id": 3, "titulo": "Sin ubicación", "categoria": "Vial", "fecha": "2021-01-02"}
	]`
	path := filepath.Join(t.TempDir(), "hechos.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: topic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	session := pipeline.NewSession(language.Spanish, metrics)
	transformer := pipeline.NewTransformer(
		domain.Normalizer{Dates: domain.DateNormalizer{Location: time.UTC}}, discardLogger())
	p := pipeline.New(source.NewFileFetcher(path), transformer, session, writer, discardLogger(), metrics, 0)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Events, 2)

	consumer := newConsumer(t, broker, topic)
	got := map[string]publishedMessage{}
	for range snap.Events {
		msg := readPublished(ctx, t, consumer)
		got[msg.Key] = msg
	}

	require.Contains(t, got, "1")
	require.Contains(t, got, "2")
	assert.Equal(t, domain.CalendarDate("2021-03-05"), got["1"].Event.FechaAcontecimiento)
	assert.InDelta(t, -34.6, *got["1"].Event.Lat, 1e-9)
	assert.Equal(t, "Vial", got["2"].Headers["categoria"])
	assert.Equal(t, snap.LoadID, got["2"].Headers["load_id"])
}
