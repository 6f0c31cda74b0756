package distrib_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/programme-lv/soltracker/conf"
	"github.com/programme-lv/soltracker/distrib"
	"github.com/programme-lv/soltracker/soltrack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ soltrack.Sink = (*distrib.MemSink)(nil)
	_ soltrack.Sink = (*distrib.LogSink)(nil)
	_ soltrack.Sink = (*distrib.Fanout)(nil)
	_ soltrack.Sink = (*distrib.SqsSink)(nil)
	_ soltrack.Sink = (*distrib.S3Sink)(nil)
	_ soltrack.Sink = (*distrib.DynamoSink)(nil)
	_ soltrack.Sink = (*distrib.PgSink)(nil)
	_ soltrack.Sink = (*distrib.HttpSink)(nil)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemSinkRecordsAndFails(t *testing.T) {
	sink := distrib.NewMemSink()
	sink.FailFor(2, errors.New("nope"))

	require.NoError(t, sink.Put(context.Background(), "summa", 3, 1, "Go 1.21", []byte("package main")))
	require.Error(t, sink.Put(context.Background(), "summa", 4, 2, "Go 1.21", nil))

	calls := sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, distrib.PutCall{
		TaskID:     "summa",
		SolutionID: 3,
		AuthorID:   1,
		LangName:   "Go 1.21",
		Content:    []byte("package main"),
	}, calls[0])
}

func TestFanoutPutsIntoEverySink(t *testing.T) {
	a, b := distrib.NewMemSink(), distrib.NewMemSink()
	b.FailFor(1, errors.New("b is down"))

	fan := distrib.NewFanout()
	fan.Add("a", a)
	fan.Add("b", b)
	assert.Equal(t, []string{"a", "b"}, fan.Names())

	err := fan.Put(context.Background(), "t", 1, 1, "C11 (GCC)", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b sink: b is down")
	assert.Len(t, a.Calls(), 1)

	require.NoError(t, fan.Put(context.Background(), "t", 1, 2, "C11 (GCC)", nil))
	assert.Len(t, a.Calls(), 2)
	assert.Len(t, b.Calls(), 1)
}

func TestFanoutCloseRunsOnce(t *testing.T) {
	fan, err := distrib.New(context.Background(), conf.SinkConf{Kinds: []string{"log"}}, quietLogger())
	require.NoError(t, err)
	fan.Close()
	fan.Close()
}

func TestNewBuildsLogAndHttpSinks(t *testing.T) {
	fan, err := distrib.New(context.Background(), conf.SinkConf{
		Kinds:             []string{"log", "http"},
		DistributorUrl:    "http://localhost:9999/solutions",
		DistributorJwtKey: "secret",
	}, quietLogger())
	require.NoError(t, err)
	defer fan.Close()
	assert.Equal(t, []string{"log", "http"}, fan.Names())
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  conf.SinkConf
	}{
		{"unknown kind", conf.SinkConf{Kinds: []string{"carrier-pigeon"}}},
		{"no kinds", conf.SinkConf{}},
		{"sqs without queue", conf.SinkConf{Kinds: []string{"sqs"}}},
		{"s3 without bucket", conf.SinkConf{Kinds: []string{"s3"}}},
		{"dynamodb without table", conf.SinkConf{Kinds: []string{"dynamodb"}}},
		{"http without key", conf.SinkConf{Kinds: []string{"http"}, DistributorUrl: "http://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := distrib.New(context.Background(), tt.cfg, quietLogger())
			require.Error(t, err)
		})
	}
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := distrib.NewLogSink(quietLogger())
	require.NoError(t, sink.Put(context.Background(), "t", 1, 1, "Java SE 21", []byte("x")))
}
