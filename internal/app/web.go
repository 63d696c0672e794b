package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/flight_computer/internal/config"
	"github.com/relabs-tech/flight_computer/internal/orientation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling, no origin policy
	},
}

// poseBroadcast fans the fused pose stream out to any number of WebSocket
// subscribers.
type poseBroadcast struct {
	mu   sync.Mutex
	subs map[chan orientation.Pose]struct{}
}

func newPoseBroadcast() *poseBroadcast {
	return &poseBroadcast{subs: make(map[chan orientation.Pose]struct{})}
}

func (b *poseBroadcast) subscribe() chan orientation.Pose {
	ch := make(chan orientation.Pose, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *poseBroadcast) unsubscribe(ch chan orientation.Pose) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *poseBroadcast) publish(p orientation.Pose) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- p:
		default:
			// slow subscriber, drop this update for it
		}
	}
}

// RunWeb subscribes to the fused pose topic and serves it over HTTP: a
// JSON snapshot endpoint, a WebSocket live stream, and the static UI.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu       sync.RWMutex
		lastPose orientation.Pose
		havePose bool
	)
	broadcast := newPoseBroadcast()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the fused pose topic
	token := client.Subscribe(cfg.TopicPoseFused, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastPose = p
		havePose = true
		mu.Unlock()
		broadcast.publish(p)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicPoseFused)

	// 3) JSON API endpoint: latest fused pose
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastPose); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) WebSocket live stream of fused poses
	http.HandleFunc("/ws/orientation", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		ch := broadcast.subscribe()
		defer broadcast.unsubscribe(ch)

		for p := range ch {
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
