package messagex

import (
	"strings"

	"github.com/pkg/errors"
)

type Topic string

const topicSeparator = "."

func NewTopic(topic string) (Topic, error) {
	if topic == "" {
		return "", errors.New("topic name cannot be empty")
	}
	if strings.Contains(topic, topicSeparator) {
		return "", errors.Errorf("topic name cannot contain %q", topicSeparator)
	}

	return Topic(topic), nil
}

func (t Topic) String() string {
	return string(t)
}

// TopicMessages groups outgoing messages under one destination topic for
// batch produce calls.
type TopicMessages struct {
	Topic    Topic
	Messages []*Message
}
