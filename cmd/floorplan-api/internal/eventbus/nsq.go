package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/nsqio/go-nsq"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// nsqdRetryDelay represents the delay that is used for retries in blocking calls.
const nsqdRetryDelay = 3 * time.Second

// Producer publishes messages to nsqd.
type Producer interface {
	Ping() error
	Publish(topic string, body []byte) error
	Stop()
}

// ProducerProvider creates a producer for the given nsqd address.
type ProducerProvider func(nsqdAddr string, config *nsq.Config) (Producer, error)

// NSQClient is a type to request NSQ related tasks such as creation of topics and publishing of events.
type NSQClient struct {
	log              *zap.SugaredLogger
	config           *nsq.Config
	nsqdAddr         string
	nsqdHTTPEndpoint string
	httpClient       *retryablehttp.Client
	provider         ProducerProvider
	delay            time.Duration

	Producer Producer
}

// NewNSQ create a new NSQClient.
func NewNSQ(log *zap.SugaredLogger, nsqdAddr, nsqdHTTPEndpoint string, provider ProducerProvider) *NSQClient {
	if provider == nil {
		provider = newProducer
	}

	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.RetryMax = 3

	return &NSQClient{
		log:              log,
		config:           nsq.NewConfig(),
		nsqdAddr:         nsqdAddr,
		nsqdHTTPEndpoint: strings.TrimSuffix(nsqdHTTPEndpoint, "/"),
		httpClient:       httpClient,
		provider:         provider,
		delay:            nsqdRetryDelay,
	}
}

func newProducer(nsqdAddr string, config *nsq.Config) (Producer, error) {
	p, err := nsq.NewProducer(nsqdAddr, config)
	if err != nil {
		return nil, fmt.Errorf("cannot create producer with nsqd=%q: %w", nsqdAddr, err)
	}
	return p, nil
}

// WaitForPublisher blocks until a producer could be created which reaches nsqd
// or the context is done.
func (n *NSQClient) WaitForPublisher(ctx context.Context) error {
	return retry.Do(
		func() error {
			p, err := n.provider(n.nsqdAddr, n.config)
			if err != nil {
				return err
			}
			err = p.Ping()
			if err != nil {
				p.Stop()
				return err
			}
			n.Producer = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(n.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			n.log.Errorw("cannot create nsq publisher", "attempt", attempt, "error", err)
		}),
	)
}

// WaitForTopicsCreated blocks until the given topics are created or the context is done.
func (n *NSQClient) WaitForTopicsCreated(ctx context.Context, topics []floorplan.NSQTopic) error {
	return retry.Do(
		func() error {
			for _, topic := range topics {
				err := n.CreateTopic(ctx, string(topic))
				if err != nil {
					return err
				}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(n.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			n.log.Errorw("cannot create topics", "attempt", attempt, "error", err)
		}),
	)
}

// CreateTopic creates the topic through the http endpoint of nsqd.
func (n *NSQClient) CreateTopic(ctx context.Context, topic string) error {
	u := n.nsqdHTTPEndpoint + "/topic/create?topic=" + url.QueryEscape(topic)
	if !strings.Contains(n.nsqdHTTPEndpoint, "://") {
		u = "http://" + u
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot create topic %q: %w", topic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot create topic %q: nsqd returned %s", topic, resp.Status)
	}

	n.log.Infow("topic created", "topic", topic)
	return nil
}

// Publish sends the data as json to the topic.
func (n *NSQClient) Publish(topic string, data any) error {
	if n.Producer == nil {
		return fmt.Errorf("no nsq publisher available")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cannot marshal data to json: %w", err)
	}
	return n.Producer.Publish(topic, b)
}

// Stop stops the producer.
func (n *NSQClient) Stop() {
	if n.Producer != nil {
		n.Producer.Stop()
	}
}
