package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/observability"
)

const streamSendBufferSize = 32

// StreamConnectionOptions wraps metadata extracted during the HTTP upgrade.
type StreamConnectionOptions struct {
	UserID        uint
	Role          string
	AssignmentID  uint
	CorrelationID string
	Context       context.Context
}

// StreamService pushes annotation change events to clients watching an
// assignment: a teacher's live heatmap or a student's own reader keeping
// multiple tabs in sync. The stream is server-to-client only; clients write
// nothing but close frames. Events fan out across nodes over redis pub/sub
// and NATS, with each node filtering out its own publications.
type StreamService interface {
	ServeConnection(conn *websocket.Conn, opts StreamConnectionOptions)
	PublishAnnotation(ctx context.Context, event dto.AnnotationEvent)
	Start(ctx context.Context)
}

type streamService struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	hub         *streamHub
	nodeID      string
}

// streamHub keeps the active websocket clients grouped by assignment.
type streamHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*streamClient]struct{}
	log   zerolog.Logger
}

type streamClient struct {
	conn    *websocket.Conn
	send    chan dto.AnnotationEvent
	options StreamConnectionOptions
	service *streamService
	closed  chan struct{}
	once    sync.Once
}

type streamEvent struct {
	Source string              `json:"source"`
	Event  dto.AnnotationEvent `json:"event"`
	SentAt time.Time           `json:"sent_at"`
}

// NewStreamService creates the annotation stream service.
func NewStreamService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) StreamService {
	hub := &streamHub{
		rooms: make(map[uint]map[*streamClient]struct{}),
		log:   logger.With().Str("component", "stream_hub").Logger(),
	}

	tracer := otel.Tracer("github.com/rhetoriclab/rhetorica-api/internal/service/stream")

	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":annotations"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".annotations"
	}

	return &streamService{
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "stream_service").Logger(),
		tracer:      tracer,
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *streamService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *streamService) ServeConnection(conn *websocket.Conn, opts StreamConnectionOptions) {
	client := &streamClient{
		conn:    conn,
		send:    make(chan dto.AnnotationEvent, streamSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)
	observability.StreamConnectionsTotal().Inc()

	go client.writer()
	client.reader()
}

// PublishAnnotation delivers an annotation change to local subscribers and
// fans it out to peer nodes. Transport failures are logged, not returned:
// the write that produced the event has already committed.
func (s *streamService) PublishAnnotation(ctx context.Context, event dto.AnnotationEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("annotation.event", event.Type),
		attribute.Int64("annotation.assignment_id", int64(event.Annotation.AssignmentID)),
	}
	spanCtx, span := s.tracer.Start(ctx, "stream.publish", trace.WithAttributes(attrs...))
	defer span.End()

	observability.AnnotationEventsTotal().WithLabelValues(event.Type).Inc()
	s.hub.broadcast(event.Annotation.AssignmentID, event)

	payload, err := json.Marshal(streamEvent{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("failed to marshal annotation event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(spanCtx, s.redisStream, payload).Err(); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Msg("failed to publish annotation event to redis")
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Msg("failed to publish annotation event to nats")
		}
	}
}

func (s *streamService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("annotation redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *streamService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "rhetorica-stream", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats annotation subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain annotation nats subscription")
		}
	}()
}

func (s *streamService) handleEvent(data []byte) {
	var event streamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid annotation event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	observability.AnnotationEventsTotal().WithLabelValues(event.Event.Type).Inc()
	s.hub.broadcast(event.Event.Annotation.AssignmentID, event.Event)
}

func (h *streamHub) register(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.AssignmentID
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*streamClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Uint("assignment_id", room).Uint("user_id", client.options.UserID).Msg("stream client connected")
}

func (h *streamHub) unregister(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.AssignmentID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Uint("assignment_id", room).Uint("user_id", client.options.UserID).Msg("stream client disconnected")
}

func (h *streamHub) broadcast(assignmentID uint, event dto.AnnotationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[assignmentID] {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Uint("assignment_id", assignmentID).Uint("user_id", client.options.UserID).Msg("dropping annotation event for slow client")
		}
	}
}

// reader drains inbound frames so close and control frames are processed.
// Clients have nothing to say on this stream; any payload is discarded.
func (c *streamClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("stream read loop ended")
			return
		}
	}
}

func (c *streamClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("stream write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("stream ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
