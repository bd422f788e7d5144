package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/apache/rocketmq-client-go/v2"
	c "github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"github.com/avast/retry-go/v4"

	"media-engine-backend/config"
)

const (
	TopicMedia = "topic_media"
	TagProcess = "tag_process"
	TagDelete  = "tag_delete"

	consumeGroupMedia = "cg_media"

	sendMessageAttempts = 3
	// queue-level retry cap: a job that keeps failing is redelivered
	// at most this many times before RocketMQ parks it on the DLQ
	maxReconsumeTimes    = 5
	consumeGoroutineNums = 10
)

var (
	producerInstance rocketmq.Producer

	consumerMedia rocketmq.PushConsumer

	// handler table keyed by topic:tag
	handlers = make(map[string]MessageHandler)
)

type MessageHandler func(context.Context, *primitive.MessageExt) error

type Message struct {
	Topic   string
	Tag     string
	Payload any
}

// ProcessPayload asks the pipeline to run one uploaded file.
type ProcessPayload struct {
	MediaID uint `json:"media_id"`
}

// DeletePayload asks for asynchronous cleanup of a removed record.
type DeletePayload struct {
	MediaID    uint   `json:"media_id"`
	ObjectName string `json:"object_name"`
}

// Init creates the producer and the media consumer. Callers register
// handlers with RegisterHandler before Run.
func Init() error {
	rlog.SetLogLevel("warn")

	var err error
	consumerMedia, err = rocketmq.NewPushConsumer(
		c.WithNameServer(config.Cfg.MQ.NameServer),
		c.WithGroupName(consumeGroupMedia),
		c.WithConsumerModel(c.Clustering),
		c.WithConsumeFromWhere(c.ConsumeFromLastOffset),
		c.WithMaxReconsumeTimes(maxReconsumeTimes),
		c.WithConsumeGoroutineNums(consumeGoroutineNums),
	)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %v", err)
	}

	producerInstance, err = rocketmq.NewProducer(
		producer.WithNameServer(config.Cfg.MQ.NameServer),
	)
	if err != nil {
		return fmt.Errorf("failed to create producer: %v", err)
	}
	return nil
}

// RegisterHandler binds a handler to TopicMedia messages carrying tag.
func RegisterHandler(tag string, handler MessageHandler) {
	handlers[handlerKey(TopicMedia, tag)] = handler
}

func Run() error {
	if err := subscribe(consumerMedia, TopicMedia); err != nil {
		return fmt.Errorf("failed to subscribe, topic: %s, err: %v", TopicMedia, err)
	}

	if err := producerInstance.Start(); err != nil {
		return fmt.Errorf("failed to start producer: %v", err)
	}

	if err := consumerMedia.Start(); err != nil {
		return fmt.Errorf("failed to start consumer: %v", err)
	}
	return nil
}

func subscribe(consumer rocketmq.PushConsumer, topic string) error {
	selector := c.MessageSelector{
		Type:       c.TAG,
		Expression: TagProcess + " || " + TagDelete,
	}

	return consumer.Subscribe(topic, selector, func(ctx context.Context, messages ...*primitive.MessageExt) (c.ConsumeResult, error) {
		for _, msg := range messages {
			h := handlers[handlerKey(msg.Topic, msg.GetTags())]
			if h == nil {
				slog.Warn("No message handler found", "topic", msg.Topic, "tag", msg.GetTags())
				continue
			}

			if err := h(ctx, msg); err != nil {
				slog.Error("Failed to process message",
					"topic", msg.Topic,
					"tag", msg.GetTags(),
					"msg_id", msg.MsgId,
					"reconsume_times", msg.ReconsumeTimes,
					"error", err)
				return c.ConsumeRetryLater, err
			}
		}
		return c.ConsumeSuccess, nil
	})
}

func handlerKey(topic, tag string) string {
	return topic + ":" + tag
}

// SendMessage publishes one message, retrying transient broker errors.
func SendMessage(ctx context.Context, message *Message) error {
	payloadJSON, err := json.Marshal(message.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	msg := primitive.NewMessage(message.Topic, payloadJSON)
	if message.Tag != "" {
		msg = msg.WithTag(message.Tag)
	}

	err = retry.Do(
		func() error {
			_, err := producerInstance.SendSync(ctx, msg)
			return err
		},
		retry.Attempts(sendMessageAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying to send message",
				"attempt", n+1,
				"topic", msg.Topic,
				"err", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s after retries: %v", msg.Topic, err)
	}

	return nil
}

// SendProcessMessage enqueues one record for the processing pipeline.
func SendProcessMessage(ctx context.Context, mediaID uint) error {
	return SendMessage(ctx, &Message{
		Topic:   TopicMedia,
		Tag:     TagProcess,
		Payload: ProcessPayload{MediaID: mediaID},
	})
}

// SendDeleteMessage enqueues cleanup of storage and vectors for a
// record that was already soft-deleted.
func SendDeleteMessage(ctx context.Context, mediaID uint, objectName string) error {
	return SendMessage(ctx, &Message{
		Topic:   TopicMedia,
		Tag:     TagDelete,
		Payload: DeletePayload{MediaID: mediaID, ObjectName: objectName},
	})
}

// Shutdown stops the MQ clients.
func Shutdown() {
	if producerInstance != nil {
		producerInstance.Shutdown()
	}
	if consumerMedia != nil {
		consumerMedia.Shutdown()
	}
}
