package distrib_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/soltracker/distrib"
	"github.com/programme-lv/soltracker/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSqs struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSqs) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

func TestSqsSinkSendsCompressedMessage(t *testing.T) {
	client := &fakeSqs{}
	sink := distrib.NewSqsSink(client, "https://sqs.eu-central-1.amazonaws.com/1/solutions")

	ctx := logger.WithRunID(context.Background(), "run-1")
	err := sink.Put(ctx, "kvadrati", 7, 10, "C++17 (GCC)", []byte("int main() {}"))
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "https://sqs.eu-central-1.amazonaws.com/1/solutions", *in.QueueUrl)
	assert.Equal(t, "10", *in.MessageAttributes["author_id"].StringValue)
	assert.Equal(t, "kvadrati", *in.MessageAttributes["task_id"].StringValue)

	msg, err := distrib.DecodeSqsBody(*in.MessageBody)
	require.NoError(t, err)
	assert.Equal(t, "kvadrati", msg.TaskID)
	assert.Equal(t, int64(7), msg.SolutionID)
	assert.Equal(t, int64(10), msg.AuthorID)
	assert.Equal(t, "C++17 (GCC)", msg.Lang)
	assert.Equal(t, "int main() {}", string(msg.Content))
	assert.NotEmpty(t, msg.MsgID)
	assert.Equal(t, "run-1", msg.RunID)
	assert.False(t, msg.SentAt.IsZero())
}

func TestSqsSinkWrapsSendErrors(t *testing.T) {
	sink := distrib.NewSqsSink(&fakeSqs{err: errors.New("throttled")}, "q")
	err := sink.Put(context.Background(), "t", 1, 1, "Go 1.21", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestDecodeSqsBodyRejectsGarbage(t *testing.T) {
	_, err := distrib.DecodeSqsBody("not base64!")
	require.Error(t, err)

	_, err = distrib.DecodeSqsBody("aGVsbG8=") // "hello", not zstd
	require.Error(t, err)
}
