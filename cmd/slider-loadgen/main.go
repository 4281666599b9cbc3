// Command slider-loadgen drives the /v1 slider API with a mix of reads,
// step writes and step time lookups, and reports latency percentiles.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL         string
	Concurrency     int
	Duration        time.Duration
	WriteRatio      float64
	LookupRatio     float64
	ZipfS           float64
	ZipfV           float64
	OutputPrefix    string
	RequestTimeout  time.Duration
	AppendTimestamp bool
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "target", "http://localhost:8090", "timeslider server base URL")
	flag.IntVar(&cfg.Concurrency, "concurrency", 16, "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&cfg.WriteRatio, "writes", 0.2, "Share of requests that PUT a step range")
	flag.Float64Var(&cfg.LookupRatio, "lookups", 0.2, "Share of requests that look up a step time")
	flag.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1) for step choice")
	flag.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	flag.StringVar(&cfg.OutputPrefix, "out", "results/slider", "Output file prefix (JSON/CSV)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 5*time.Second, "Per-request timeout")
	flag.BoolVar(&cfg.AppendTimestamp, "append-ts", true, "Append timestamp to output prefix")
	flag.Parse()
	return cfg
}

type op string

const (
	opRead   op = "read"
	opWrite  op = "write"
	opLookup op = "lookup"
)

// pickOp maps a uniform draw in [0,1) onto the configured mix.
func pickOp(u, writes, lookups float64) op {
	switch {
	case u < writes:
		return opWrite
	case u < writes+lookups:
		return opLookup
	default:
		return opRead
	}
}

// request result (one sample per request)
type sample struct {
	Timestamp time.Time
	Op        op
	Latency   time.Duration
	Status    int
	ErrorMsg  string
}

// ok treats 304 and the empty-slider 404 on lookups as served.
func (s sample) ok() bool {
	if s.ErrorMsg != "" {
		return false
	}
	switch {
	case s.Status >= 200 && s.Status < 300, s.Status == http.StatusNotModified:
		return true
	case s.Op == opLookup && s.Status == http.StatusNotFound:
		return true
	}
	return false
}

type opSummary struct {
	Total int64   `json:"total"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

type summary struct {
	StartTime     time.Time        `json:"start"`
	EndTime       time.Time        `json:"end"`
	DurationSec   float64          `json:"duration_sec"`
	TotalRequests int64            `json:"total"`
	SuccessCount  int64            `json:"success"`
	ErrorCount    int64            `json:"errors"`
	NotModified   int64            `json:"not_modified"`
	ThroughputRPS float64          `json:"throughput_rps"`
	Ops           map[op]opSummary `json:"ops"`
	Concurrency   int              `json:"concurrency"`
	TargetURL     string           `json:"target"`
}

type worker struct {
	cfg    Config
	client *http.Client
	rng    *rand.Rand
	zipf   *rand.Zipf
	steps  int
	etag   string
}

func (w *worker) do(ctx context.Context) sample {
	kind := pickOp(w.rng.Float64(), w.cfg.WriteRatio, w.cfg.LookupRatio)
	var (
		req *http.Request
		err error
	)
	switch kind {
	case opWrite:
		start := w.step()
		end := start + w.rng.Intn(max(1, w.steps-start)+1)
		body, _ := json.Marshal(map[string]int{"start": start, "end": end})
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, w.cfg.BaseURL+"/v1/slider/steps", bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	case opLookup:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/slider/steps/%d/time", w.cfg.BaseURL, w.step()), nil)
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.BaseURL+"/v1/slider", nil)
		if req != nil && w.etag != "" {
			req.Header.Set("If-None-Match", w.etag)
		}
	}

	s := sample{Timestamp: time.Now(), Op: kind}
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	resp, err := w.client.Do(req)
	s.Latency = time.Since(s.Timestamp)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	defer func() { _ = resp.Body.Close() }()
	s.Status = resp.StatusCode

	if kind != opLookup && resp.StatusCode == http.StatusOK {
		w.etag = resp.Header.Get("ETag")
		var snap struct {
			NumberOfSteps int `json:"number_of_steps"`
		}
		if json.NewDecoder(resp.Body).Decode(&snap) == nil {
			w.steps = snap.NumberOfSteps
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if !s.ok() {
		s.ErrorMsg = fmt.Sprintf("status=%d", resp.StatusCode)
	}
	return s
}

// step favours low indices, like a user scrubbing near the start.
func (w *worker) step() int {
	if w.steps <= 0 {
		return 0
	}
	return int(w.zipf.Uint64() % uint64(w.steps+1))
}

func main() {
	cfg := loadConfig()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPrefix), 0o750); err != nil {
		log.Fatalf("mkdir results: %v", err)
	}
	prefix := cfg.OutputPrefix
	if cfg.AppendTimestamp {
		prefix = fmt.Sprintf("%s_%s", prefix, time.Now().UTC().Format("20060102_150405Z"))
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 4 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        256,
			MaxIdleConnsPerHost: 128,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	csvPath := prefix + "_samples.csv"
	jsonPath := prefix + "_summary.json"
	csvFile, err := os.Create(filepath.Clean(csvPath))
	if err != nil {
		log.Printf("open csv: %v", err)
		return
	}
	defer func() { _ = csvFile.Close() }()
	csvWriter := csv.NewWriter(csvFile)

	samplesChan := make(chan sample, 4096)
	resultsChan := make(chan summary, 1)
	go func() {
		_ = csvWriter.Write([]string{"timestamp", "op", "latency_ms", "status", "error"})
		sum := summary{Ops: map[op]opSummary{}}
		lat := map[op][]float64{}
		for s := range samplesChan {
			sum.TotalRequests++
			if s.Status == http.StatusNotModified {
				sum.NotModified++
			}
			ms := float64(s.Latency.Microseconds()) / 1000.0
			if s.ok() {
				sum.SuccessCount++
				lat[s.Op] = append(lat[s.Op], ms)
			} else {
				sum.ErrorCount++
			}
			_ = csvWriter.Write([]string{
				s.Timestamp.UTC().Format(time.RFC3339Nano),
				string(s.Op),
				fmt.Sprintf("%.3f", ms),
				fmt.Sprintf("%d", s.Status),
				s.ErrorMsg,
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Printf("csv flush error: %v", err)
		}
		for k, v := range lat {
			sort.Float64s(v)
			sum.Ops[k] = opSummary{Total: int64(len(v)), P50Ms: percentile(v, 50), P95Ms: percentile(v, 95), P99Ms: percentile(v, 99)}
		}
		resultsChan <- sum
	}()

	startTime := time.Now()
	log.Printf("loadgen start target=%s dur=%s conc=%d writes=%.2f lookups=%.2f",
		cfg.BaseURL, cfg.Duration, cfg.Concurrency, cfg.WriteRatio, cfg.LookupRatio)

	seed := time.Now().UnixNano()
	var wg sync.WaitGroup
	wg.Add(cfg.Concurrency)
	for id := range cfg.Concurrency {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(id) + 1))
			w := &worker{cfg: cfg, client: httpClient, rng: r, zipf: rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, math.MaxUint16)}
			for ctx.Err() == nil {
				s := w.do(ctx)
				if ctx.Err() != nil {
					return
				}
				select {
				case samplesChan <- s:
				case <-ctx.Done():
					return
				}
			}
		}(id)
	}

	go func() {
		<-ctx.Done()
		wg.Wait()
		close(samplesChan)
	}()

	res := <-resultsChan
	endTime := time.Now()
	res.StartTime, res.EndTime = startTime.UTC(), endTime.UTC()
	res.DurationSec = endTime.Sub(startTime).Seconds()
	res.ThroughputRPS = float64(res.TotalRequests) / res.DurationSec
	res.Concurrency = cfg.Concurrency
	res.TargetURL = cfg.BaseURL

	if jsonFile, err := os.Create(filepath.Clean(jsonPath)); err == nil {
		enc := json.NewEncoder(jsonFile)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		_ = jsonFile.Close()
	}

	log.Printf("done: total=%d succ=%d err=%d 304=%d thr=%.2f rps",
		res.TotalRequests, res.SuccessCount, res.ErrorCount, res.NotModified, res.ThroughputRPS)
	for k, v := range res.Ops {
		log.Printf("  %-6s n=%d p50=%.1fms p95=%.1fms p99=%.1fms", k, v.Total, v.P50Ms, v.P95Ms, v.P99Ms)
	}
	log.Printf("wrote %s and %s", jsonPath, csvPath)
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 100 {
		return sortedValues[len(sortedValues)-1]
	}
	k := (p / 100.0) * float64(len(sortedValues)-1)
	f := math.Floor(k)
	i := int(f)
	if i >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}
	d := k - f
	return sortedValues[i]*(1-d) + sortedValues[i+1]*d
}
