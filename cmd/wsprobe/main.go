// Package main opens many realtime connections against a running API and
// reports the events they receive.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the probe results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	LikesToggled         int64
	EventsReceived       int64
	Errors               int64

	mu     sync.Mutex
	byType map[string]int64
}

func (m *Metrics) recordEvent(eventType string) {
	atomic.AddInt64(&m.EventsReceived, 1)
	m.mu.Lock()
	m.byType[eventType]++
	m.mu.Unlock()
}

var metrics = Metrics{byType: make(map[string]int64)}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8000", "API server host")
	username := flag.String("username", "", "Account to connect as")
	password := flag.String("password", "password123", "Account password")
	clients := flag.Int("clients", 20, "Number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	postID := flag.Uint("post", 0, "Post to like and dislike every tick (0 disables)")
	likeToken := flag.String("like-token", "", "Token used for like toggles; defaults to the login token")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: wsprobe -username <name> [-password <pw>] [-post <id>]")
		os.Exit(2)
	}

	log.Printf("Target: %s, clients: %d, duration: %v", *host, *clients, *duration)

	token, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s", *username)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, stop, &wg)
		time.Sleep(20 * time.Millisecond)
	}

	if *postID != 0 {
		toggler := token
		if *likeToken != "" {
			toggler = *likeToken
		}
		wg.Add(1)
		go toggleLikes(*host, toggler, *postID, stop, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("Probe duration reached")
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func login(host, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	resp, err := httpClient.Post(fmt.Sprintf("http://%s/api/users/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func runClient(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "token=" + url.QueryEscape(token)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			var event struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			metrics.recordEvent(event.Type)
		}
	}()

	<-stop
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func toggleLikes(host, token string, postID uint, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	target := fmt.Sprintf("http://%s/api/posts/%d/like-dislike", host, postID)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			req, _ := http.NewRequest(http.MethodPost, target, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := httpClient.Do(req)
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.LikesToggled, 1)
		}
	}
}

func printMetrics() {
	log.Println("Probe Results")
	log.Println("=============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Likes Toggled: %d", atomic.LoadInt64(&metrics.LikesToggled))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	types := make([]string, 0, len(metrics.byType))
	for t := range metrics.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.Printf("  %s: %d", t, metrics.byType[t])
	}
}
