package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// frame is the subset of a relay notification the load test inspects.
type frame struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	Message string `json:"message"`
}

// tally counts received frames by what they mean to the receiving client.
type tally struct {
	joined   atomic.Int64
	left     atomic.Int64
	echoes   atomic.Int64
	peerMsgs atomic.Int64
	errFrame atomic.Int64
}

func main() {
	url := flag.String("url", "ws://localhost:5000/ws", "WebSocket server URL")
	api := flag.String("api", "http://localhost:5000", "HTTP API base URL")
	clients := flag.Int("clients", 10, "Number of concurrent clients")
	room := flag.String("room", "", "Room to join (random when empty)")
	messages := flag.Int("messages", 10, "Messages per client")
	settle := flag.Duration("settle", time.Second, "Time to wait for in-flight frames before closing")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if *room == "" {
		*room = "loadtest-" + uuid.NewString()[:8]
	}
	if err := createRoom(*api, *room); err != nil {
		log.Warn().Err(err).Str("room", *room).Msg("create room failed, continuing")
	}
	log.Info().Int("clients", *clients).Int("messages", *messages).Str("room", *room).Msg("load test starting")

	var (
		counts    tally
		dialErrs  atomic.Int64
		sent      atomic.Int64
		rtts      []time.Duration
		rttMu     sync.Mutex
		joinedAll sync.WaitGroup
		wg        sync.WaitGroup
	)
	joinedAll.Add(*clients)
	start := time.Now()

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			user := fmt.Sprintf("user_%d", id)

			conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
			if err != nil {
				dialErrs.Add(1)
				joinedAll.Done()
				log.Error().Err(err).Int("client", id).Msg("dial failed")
				return
			}
			defer conn.Close()

			// Send times keyed by sequence number, matched against our own echoes.
			var pending sync.Map
			readDone := make(chan struct{})
			go func() {
				defer close(readDone)
				for {
					var f frame
					if err := conn.ReadJSON(&f); err != nil {
						return
					}
					switch f.Type {
					case "user_joined":
						counts.joined.Add(1)
					case "user_left":
						counts.left.Add(1)
					case "error":
						counts.errFrame.Add(1)
					case "message":
						if f.User != user {
							counts.peerMsgs.Add(1)
							continue
						}
						counts.echoes.Add(1)
						if at, ok := pending.LoadAndDelete(f.Message); ok {
							rttMu.Lock()
							rtts = append(rtts, time.Since(at.(time.Time)))
							rttMu.Unlock()
						}
					}
				}
			}()

			join, _ := json.Marshal(map[string]string{"type": "join", "room": *room, "user": user})
			if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
				joinedAll.Done()
				return
			}
			joinedAll.Done()
			joinedAll.Wait()

			for j := 0; j < *messages; j++ {
				text := user + "#" + strconv.Itoa(j)
				body, _ := json.Marshal(map[string]string{"type": "message", "room": *room, "message": text})
				pending.Store(text, time.Now())
				if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
					log.Error().Err(err).Int("client", id).Msg("write failed")
					return
				}
				sent.Add(1)
				time.Sleep(10 * time.Millisecond)
			}

			time.Sleep(*settle)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-readDone
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)
	sort.Slice(rtts, func(i, j int) bool { return rtts[i] < rtts[j] })

	// Every message reaches every connected client, the sender included.
	connected := int64(*clients) - dialErrs.Load()
	expected := sent.Load() * connected

	fmt.Println("\n=== Relay Load Test ===")
	fmt.Printf("Duration:      %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Clients:       %d connected, %d dial errors\n", connected, dialErrs.Load())
	fmt.Printf("Sent:          %d messages\n", sent.Load())
	fmt.Printf("Delivered:     %d of %d expected (%d echoes, %d from peers)\n",
		counts.echoes.Load()+counts.peerMsgs.Load(), expected, counts.echoes.Load(), counts.peerMsgs.Load())
	fmt.Printf("user_joined:   %d\n", counts.joined.Load())
	fmt.Printf("user_left:     %d\n", counts.left.Load())
	fmt.Printf("error frames:  %d\n", counts.errFrame.Load())
	if len(rtts) > 0 {
		fmt.Printf("Echo RTT p50:  %s\n", percentile(rtts, 50))
		fmt.Printf("Echo RTT p95:  %s\n", percentile(rtts, 95))
		fmt.Printf("Echo RTT p99:  %s\n", percentile(rtts, 99))
	}
	fmt.Printf("Throughput:    %.0f msgs/sec\n", float64(sent.Load())/elapsed.Seconds())
}

func createRoom(api, room string) error {
	body, err := json.Marshal(map[string]string{"room_id": room})
	if err != nil {
		return err
	}
	resp, err := http.Post(api+"/create-room", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
