package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mogusu300/b2zi-merchant/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// LogDocument is one log line in the logs collection. The ids support
// looking up the trail of a request, an order or a merchant, so they are
// lifted out of Attrs.
type LogDocument struct {
	Time       time.Time `bson:"time"`
	Level      string    `bson:"level"`
	Msg        string    `bson:"msg"`
	RequestID  string    `bson:"request_id,omitempty"`
	Principal  string    `bson:"principal,omitempty"`
	Role       string    `bson:"role,omitempty"`
	OrderID    string    `bson:"order_id,omitempty"`
	MerchantID string    `bson:"merchant_id,omitempty"`
	Attrs      bson.M    `bson:"attrs,omitempty"`
}

// promoted maps attribute keys to their top-level field.
var promoted = map[string]func(*LogDocument, string){
	"request_id":  func(d *LogDocument, v string) { d.RequestID = v },
	"principal":   func(d *LogDocument, v string) { d.Principal = v },
	"role":        func(d *LogDocument, v string) { d.Role = v },
	"order_id":    func(d *LogDocument, v string) { d.OrderID = v },
	"merchant_id": func(d *LogDocument, v string) { d.MerchantID = v },
}

// mongoSink owns the connection and the writer goroutine shared by every
// handler derived with WithAttrs/WithGroup.
type mongoSink struct {
	col    *mongo.Collection
	client *mongo.Client
	queue  chan LogDocument

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// MongoHandler is an slog.Handler that queues records for a background
// batch writer. When the queue is full the record is dropped and counted in
// b2zi_logs_dropped_total; logging never blocks a request.
type MongoHandler struct {
	sink   *mongoSink
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewMongoHandler connects to uri and writes records at Info and above into
// db.collection. Call Close on shutdown to flush.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("mongo log sink: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo log sink: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "time", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	sink := newMongoSink(mongoQueueSize)
	sink.col = col
	sink.client = client
	go sink.drain()

	return &MongoHandler{sink: sink, level: slog.LevelInfo}, nil
}

func newMongoSink(size int) *mongoSink {
	return &mongoSink{
		queue:   make(chan LogDocument, size),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{
		Time:  r.Time.UTC(),
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}
	for _, a := range h.attrs {
		h.collect(&doc, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(&doc, a)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}

	select {
	case h.sink.queue <- doc:
	default:
		metrics.LogRecordsDropped.Inc()
	}
	return nil
}

func (h *MongoHandler) collect(doc *LogDocument, a slog.Attr) {
	v := a.Value.Resolve()
	if len(h.groups) == 0 {
		if set, ok := promoted[a.Key]; ok {
			set(doc, v.String())
			return
		}
	}

	key := a.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	putAttr(doc.Attrs, key, v)
}

func putAttr(attrs bson.M, key string, v slog.Value) {
	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			putAttr(attrs, key+"."+ga.Key, ga.Value.Resolve())
		}
	case slog.KindTime:
		attrs[key] = v.Time().UTC()
	case slog.KindDuration:
		attrs[key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			attrs[key] = err.Error()
			return
		}
		attrs[key] = fmt.Sprint(v.Any())
	default:
		attrs[key] = v.Any()
	}
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

func (s *mongoSink) drain() {
	defer close(s.stopped)
	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.col.InsertMany(ctx, batch); err != nil {
			metrics.LogRecordsDropped.Add(float64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
				if len(batch) >= mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close flushes queued records and disconnects.
func (h *MongoHandler) Close() {
	s := h.sink
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// MultiHandler fans each record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
