package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/CaratCompare/pkg/errors"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env, err := NewEnvelope(EventSitePublished, "caratctl", SitePublishedPayload{
		RunID: "run-1", Pages: 1227, SitemapKey: "sitemap.xml", PublishedAt: published,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, schemaVersion, env.SchemaVersion)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var payload SitePublishedPayload
	decoded, err := DecodeEnvelope(data, &payload)
	require.NoError(t, err)
	assert.Equal(t, EventSitePublished, decoded.EventType)
	assert.Equal(t, SitePublishedPayload{RunID: "run-1", Pages: 1227, SitemapKey: "sitemap.xml", PublishedAt: published}, payload)
}

func TestSitePublishedPayload_JSONKeys(t *testing.T) {
	data, err := json.Marshal(SitePublishedPayload{RunID: "r", Pages: 2, SitemapKey: "sitemap.xml"})
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.ElementsMatch(t, []string{"run_id", "pages", "sitemap_key", "published_at"}, keys(m))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	_, err := DecodeEnvelope([]byte("{"), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))

	_, err = DecodeEnvelope([]byte(`{"event_type":"x","payload":"nope"}`), &SitePublishedPayload{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

type capturePublisher struct {
	msgs []*ProducerMessage
	err  error
}

func (c *capturePublisher) Publish(_ context.Context, msg *ProducerMessage) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestPublishEvent(t *testing.T) {
	p := &capturePublisher{}
	env, err := PublishEvent(context.Background(), p, TopicSitePublished, EventSitePublished, "worker", "run-9",
		SitePublishedPayload{RunID: "run-9", Pages: 3})
	require.NoError(t, err)
	require.Len(t, p.msgs, 1)
	assert.Equal(t, "run-9", string(p.msgs[0].Key))
	assert.Equal(t, env.EventID, p.msgs[0].Headers["event_id"])

	p.err = errors.New("down")
	_, err = PublishEvent(context.Background(), p, TopicSitePublished, EventSitePublished, "worker", "k", struct{}{})
	assert.Error(t, err)
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics("", "custom.published")
	require.Len(t, topics, 3)
	assert.Equal(t, TopicPrerenderRequested, topics[0].Name)
	assert.Equal(t, "custom.published", topics[1].Name)
}

type fakeConn struct {
	existing map[string]bool
	created  []kafka.TopicConfig
}

func (f *fakeConn) CreateTopics(topics ...kafka.TopicConfig) error {
	f.created = append(f.created, topics...)
	return nil
}

func (f *fakeConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if len(topics) == 1 && f.existing[topics[0]] {
		return []kafka.Partition{{Topic: topics[0]}}, nil
	}
	return nil, errors.New("unknown topic")
}

func (f *fakeConn) Close() error { return nil }

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &fakeConn{existing: map[string]bool{TopicPrerenderRequested: true}}
	m := NewTopicManagerFrom(conn, logging.NewNopLogger())

	require.NoError(t, m.EnsureTopics(context.Background(), DefaultTopics("", "")))
	require.Len(t, conn.created, 2)
	assert.Equal(t, TopicSitePublished, conn.created[0].Topic)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)

	err := m.EnsureTopics(context.Background(), []TopicConfig{{Name: "bad"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation))
}
