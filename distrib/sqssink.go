package distrib

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/klauspost/compress/zstd"
)

type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SqsSink enqueues every solution as a zstd compressed, base64 encoded
// JSON SolutionMsg.
type SqsSink struct {
	client   SendMessageAPI
	queueUrl string
}

func NewSqsSink(client SendMessageAPI, queueUrl string) *SqsSink {
	return &SqsSink{
		client:   client,
		queueUrl: queueUrl,
	}
}

func (s *SqsSink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	msg, err := newSolutionMsg(ctx, taskID, solutionID, authorID, langName, content)
	if err != nil {
		return err
	}

	body, err := EncodeSqsBody(msg)
	if err != nil {
		return err
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"author_id": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.FormatInt(authorID, 10)),
			},
			"task_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(taskID),
			},
		},
	})
	if err != nil {
		format := "failed to send message to solution queue: %w"
		errMsg := fmt.Errorf(format, err)
		return errMsg
	}

	return nil
}

// EncodeSqsBody marshals msg to json, compresses it with zstd and encodes
// the result as base64.
func EncodeSqsBody(msg SolutionMsg) (string, error) {
	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal solution message: %w", err)
	}

	zstdEncoder, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer zstdEncoder.Close()

	compressed := zstdEncoder.EncodeAll(jsonMsg, make([]byte, 0, len(jsonMsg)))
	return base64.StdEncoding.EncodeToString(compressed), nil
}

// DecodeSqsBody reverses EncodeSqsBody. Consumers of the queue use it.
func DecodeSqsBody(body string) (SolutionMsg, error) {
	compressed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return SolutionMsg{}, fmt.Errorf("failed to decode base64 body: %w", err)
	}

	zstdDecoder, err := zstd.NewReader(nil)
	if err != nil {
		return SolutionMsg{}, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer zstdDecoder.Close()

	jsonMsg, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return SolutionMsg{}, fmt.Errorf("failed to decompress body: %w", err)
	}

	var msg SolutionMsg
	if err := json.Unmarshal(jsonMsg, &msg); err != nil {
		return SolutionMsg{}, fmt.Errorf("failed to unmarshal solution message: %w", err)
	}
	return msg, nil
}
