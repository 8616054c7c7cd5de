// Package vktest provides an in-process VK API server for tests.
package vktest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"vkprofiler/pkg/config"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/vk"
)

// Token is the access token the server accepts
const Token = "test-token"

// Forever makes a scripted failure repeat on every call
const Forever = -1

// Server simulates the subset of the VK method API vkprofiler uses.
// Failures are scripted per method.
type Server struct {
	server *httptest.Server

	mu            sync.Mutex
	users         map[string]vk.User
	walls         map[int64][]vk.WallPost
	subscriptions map[int64][]int64
	groups        map[int64]vk.Group

	apiErrors     map[string]scriptedError
	rateLimits    map[string]int
	transportErrs map[string]int

	calls    map[string]int
	requests map[string][]url.Values
}

type scriptedError struct {
	after int
	err   *errs.APIError
}

// NewServer starts a mock VK API server
func NewServer() *Server {
	s := &Server{
		users:         make(map[string]vk.User),
		walls:         make(map[int64][]vk.WallPost),
		subscriptions: make(map[int64][]int64),
		groups:        make(map[int64]vk.Group),
		apiErrors:     make(map[string]scriptedError),
		rateLimits:    make(map[string]int),
		transportErrs: make(map[string]int),
		calls:         make(map[string]int),
		requests:      make(map[string][]url.Values),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the base URL to use as vk.base_url
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down
func (s *Server) Close() {
	s.server.Close()
}

// Config returns client settings pointed at the server with millisecond
// delays and throttling disabled.
func (s *Server) Config() (config.VKConfig, config.RateLimitConfig) {
	return config.VKConfig{
			AccessToken: Token,
			APIVersion:  vk.APIVersion,
			BaseURL:     s.URL(),
			Timeout:     5 * time.Second,
		}, config.RateLimitConfig{
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
			PageDelay:  0,
		}
}

// AddUser registers a user resolvable by screen name and by "id<N>"
func (s *Server) AddUser(u vk.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ScreenName] = u
	s.users["id"+strconv.FormatInt(u.ID, 10)] = u
}

// SetWall sets the posts wall.get serves for owner, newest first
func (s *Server) SetWall(owner int64, posts []vk.WallPost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walls[owner] = posts
}

// SetSubscriptions sets the community ids users.getSubscriptions serves
func (s *Server) SetSubscriptions(user int64, groupIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[user] = groupIDs
}

// AddGroups registers communities for groups.getById
func (s *Server) AddGroups(groups ...vk.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groups {
		s.groups[g.ID] = g
	}
}

// FailMethod makes method return apiErr once it has served `after` calls
func (s *Server) FailMethod(method string, after int, apiErr *errs.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiErrors[method] = scriptedError{after: after, err: apiErr}
}

// RateLimit makes the next n calls of method return error code 6
func (s *Server) RateLimit(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimits[method] = n
}

// FailTransport makes the next n calls of method answer HTTP 502
func (s *Server) FailTransport(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transportErrs[method] = n
}

// Calls returns how many requests method received
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Requests returns the query of every request method received
func (s *Server) Requests(method string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.requests[method]...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")
	query := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method]++
	s.requests[method] = append(s.requests[method], query)

	if take(s.transportErrs, method) {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	if query.Get("access_token") != Token {
		writeError(w, &errs.APIError{Code: 5, Message: "User authorization failed: invalid access_token"})
		return
	}
	if take(s.rateLimits, method) {
		writeError(w, &errs.APIError{Code: errs.CodeTooManyRequests, Message: "Too many requests per second"})
		return
	}
	if scripted, ok := s.apiErrors[method]; ok && s.calls[method] > scripted.after {
		writeError(w, scripted.err)
		return
	}

	switch method {
	case vk.MethodUsersGet:
		s.handleUsers(w, query)
	case vk.MethodWallGet:
		s.handleWall(w, query)
	case vk.MethodUsersGetSubscriptions:
		s.handleSubscriptions(w, query)
	case vk.MethodGroupsGetByID:
		s.handleGroups(w, query)
	default:
		writeError(w, &errs.APIError{Code: 3, Message: "Unknown method passed"})
	}
}

func (s *Server) handleUsers(w http.ResponseWriter, query url.Values) {
	users := []vk.User{}
	for _, name := range strings.Split(query.Get("user_ids"), ",") {
		if u, ok := s.users[name]; ok {
			users = append(users, u)
		}
	}
	writeResponse(w, users)
}

func (s *Server) handleWall(w http.ResponseWriter, query url.Values) {
	var owner int64
	if domain := query.Get("domain"); domain != "" {
		owner = s.users[domain].ID
	} else {
		owner, _ = strconv.ParseInt(query.Get("owner_id"), 10, 64)
	}

	posts := s.walls[owner]
	page := window(len(posts), query, vk.MaxWallCount)
	writeResponse(w, vk.WallPage{
		Count: len(posts),
		Items: append([]vk.WallPost{}, posts[page.start:page.end]...),
	})
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, query url.Values) {
	user, _ := strconv.ParseInt(query.Get("user_id"), 10, 64)
	ids := s.subscriptions[user]
	page := window(len(ids), query, vk.MaxSubscriptionsCount)
	writeResponse(w, vk.Subscriptions{
		Users:  vk.IDList{Items: []int64{}},
		Groups: vk.IDList{Count: len(ids), Items: append([]int64{}, ids[page.start:page.end]...)},
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, query url.Values) {
	groups := []vk.Group{}
	for _, raw := range strings.Split(query.Get("group_ids"), ",") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if g, ok := s.groups[id]; ok {
			groups = append(groups, g)
		}
	}
	writeResponse(w, vk.GroupsByID{Groups: groups})
}

type bounds struct{ start, end int }

func window(total int, query url.Values, defaultCount int) bounds {
	offset, _ := strconv.Atoi(query.Get("offset"))
	count, err := strconv.Atoi(query.Get("count"))
	if err != nil || count <= 0 {
		count = defaultCount
	}
	start := min(max(offset, 0), total)
	return bounds{start: start, end: min(start+count, total)}
}

// take consumes one scripted failure for method
func take(counters map[string]int, method string) bool {
	n, ok := counters[method]
	if !ok || n == 0 {
		return false
	}
	if n > 0 {
		counters[method] = n - 1
	}
	return true
}

func writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"response": v})
}

func writeError(w http.ResponseWriter, apiErr *errs.APIError) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"error": apiErr})
}
