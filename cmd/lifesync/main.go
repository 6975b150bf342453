package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/config"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/session"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	addrFlag := flag.String("addr", "", "daemon address (overrides config listen_addr)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c := &cli{
		base:    "http://" + resolveAddr(*addrFlag),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		jsonOut: *jsonFlag,
	}

	switch args[0] {
	case "status":
		c.cmdStatus()
	case "sync":
		c.cmdSync()
	case "log":
		c.cmdLog(args[1:])
	case "list":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: lifesync list <water|medication|mood|chat>")
			os.Exit(1)
		}
		c.cmdList(args[1])
	case "ask":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: lifesync ask <question>")
			os.Exit(1)
		}
		c.cmdAsk(args[1])
	case "profile":
		c.cmdProfile(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func resolveAddr(override string) string {
	if override != "" {
		return override
	}
	if cfg, err := config.Load(session.ConfigPath()); err == nil && cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return config.Default().ListenAddr
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: lifesync [--session <name>] [--addr <host:port>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                       Show connection status")
	fmt.Fprintln(os.Stderr, "  sync                         Push local records to the backend")
	fmt.Fprintln(os.Stderr, "  log water <ml>               Log water intake in milliliters")
	fmt.Fprintln(os.Stderr, "  log mood <mood> [note]      Log current mood")
	fmt.Fprintln(os.Stderr, "  log med <name> <dosage>      Log a medication dose")
	fmt.Fprintln(os.Stderr, "  list <kind>                  List records of a kind")
	fmt.Fprintln(os.Stderr, "  ask <question>               Ask the AI assistant")
	fmt.Fprintln(os.Stderr, "  profile show                 Show the user profile")
	fmt.Fprintln(os.Stderr, "  profile set <field> <value>  Update a profile field")
}

type cli struct {
	base    string
	httpc   *http.Client
	jsonOut bool
}

func (c *cli) do(method, path string, body any, out any) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			fail(err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		fail(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot reach daemon at %s: %v\n", c.base, err)
		fmt.Fprintln(os.Stderr, "is lifesyncd running?")
		os.Exit(1)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		fail(err)
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			fail(fmt.Errorf("%s (%d)", e.Error, resp.StatusCode))
		}
		fail(fmt.Errorf("daemon returned %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			fail(err)
		}
	}
}

func (c *cli) cmdStatus() {
	var st struct {
		Reachable  bool      `json:"reachable"`
		LastCheck  time.Time `json:"lastCheck"`
		WasOffline bool      `json:"wasOffline"`
	}
	c.do(http.MethodGet, "/v1/status", nil, &st)
	if c.jsonOut {
		outputJSON(st)
		return
	}
	state := "offline"
	if st.Reachable {
		state = "online"
	}
	fmt.Printf("Backend:    %s\n", state)
	if !st.LastCheck.IsZero() {
		fmt.Printf("Last check: %s\n", st.LastCheck.Format(time.RFC3339))
	}
	if st.WasOffline {
		fmt.Println("Note:       connection recently restored")
	}
}

func (c *cli) cmdSync() {
	var report struct {
		Synced  int `json:"synced"`
		Skipped int `json:"skipped"`
		Failed  int `json:"failed"`
	}
	c.do(http.MethodPost, "/v1/sync", nil, &report)
	if c.jsonOut {
		outputJSON(report)
		return
	}
	fmt.Printf("Synced:  %d\n", report.Synced)
	fmt.Printf("Skipped: %d\n", report.Skipped)
	fmt.Printf("Failed:  %d\n", report.Failed)
}

func (c *cli) cmdLog(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: lifesync log <water|mood|med> ...")
		os.Exit(1)
	}

	rec := record.Record{CreatedAt: time.Now().UnixMilli()}
	switch args[0] {
	case "water":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: lifesync log water <ml>")
			os.Exit(1)
		}
		ml, err := strconv.Atoi(args[1])
		if err != nil || ml <= 0 {
			fmt.Fprintf(os.Stderr, "error: invalid amount %q\n", args[1])
			os.Exit(1)
		}
		rec.Kind = record.KindWater
		rec.Water = &record.WaterLog{AmountML: ml}
	case "mood":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: lifesync log mood <mood> [note]")
			os.Exit(1)
		}
		rec.Kind = record.KindMood
		rec.Mood = &record.MoodEntry{Mood: args[1]}
		if len(args) > 2 {
			rec.Mood.Note = args[2]
		}
	case "med":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: lifesync log med <name> <dosage>")
			os.Exit(1)
		}
		rec.Kind = record.KindMedication
		rec.Medication = &record.MedicationEntry{Name: args[1], Dosage: args[2]}
	default:
		fmt.Fprintf(os.Stderr, "unknown log type: %s\n", args[0])
		os.Exit(1)
	}

	var created struct {
		Record record.Record `json:"record"`
		Source string        `json:"source"`
	}
	c.do(http.MethodPost, "/v1/records/"+string(rec.Kind), rec, &created)
	if c.jsonOut {
		outputJSON(created)
		return
	}
	fmt.Printf("Logged %s (%s, id %s)\n", rec.Kind, created.Source, created.Record.ID)
}

func (c *cli) cmdList(kind string) {
	var listed struct {
		Records []record.Record `json:"records"`
		Source  string          `json:"source"`
	}
	c.do(http.MethodGet, "/v1/records/"+kind, nil, &listed)
	if c.jsonOut {
		outputJSON(listed)
		return
	}
	if len(listed.Records) == 0 {
		fmt.Printf("No %s records.\n", kind)
		return
	}
	fmt.Printf("%d record(s), source %s:\n", len(listed.Records), listed.Source)
	for _, r := range listed.Records {
		fmt.Printf("  %-28s %s  %s\n",
			r.ID, time.UnixMilli(r.CreatedAt).Format("2006-01-02 15:04"), describe(r))
	}
}

func describe(r record.Record) string {
	switch {
	case r.Water != nil:
		return fmt.Sprintf("%d ml", r.Water.AmountML)
	case r.Medication != nil:
		return fmt.Sprintf("%s %s", r.Medication.Name, r.Medication.Dosage)
	case r.Mood != nil:
		if r.Mood.Note != "" {
			return fmt.Sprintf("%s (%s)", r.Mood.Mood, r.Mood.Note)
		}
		return r.Mood.Mood
	case r.Chat != nil:
		return r.Chat.Text
	}
	return ""
}

func (c *cli) cmdAsk(question string) {
	var resp struct {
		Text  string `json:"text"`
		Model string `json:"model"`
	}
	c.do(http.MethodPost, "/v1/ai", map[string]string{"text": question}, &resp)
	if c.jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Println(resp.Text)
}

func (c *cli) cmdProfile(args []string) {
	if len(args) == 0 || args[0] == "show" {
		var p record.Profile
		c.do(http.MethodGet, "/v1/profile", nil, &p)
		if c.jsonOut {
			outputJSON(p)
			return
		}
		fmt.Printf("Name:     %s\n", p.DisplayName)
		fmt.Printf("Height:   %.0f cm\n", p.HeightCM)
		fmt.Printf("Weight:   %.1f kg\n", p.WeightKG)
		fmt.Printf("Age:      %d\n", p.Age)
		fmt.Printf("Activity: %s\n", p.ActivityLevel)
		return
	}
	if args[0] != "set" || len(args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: lifesync profile [show | set <field> <value>]")
		os.Exit(1)
	}

	var p record.Profile
	c.do(http.MethodGet, "/v1/profile", nil, &p)
	field, value := args[1], args[2]
	switch field {
	case "name":
		p.DisplayName = value
	case "height":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fail(fmt.Errorf("invalid height %q", value))
		}
		p.HeightCM = v
	case "weight":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fail(fmt.Errorf("invalid weight %q", value))
		}
		p.WeightKG = v
	case "age":
		v, err := strconv.Atoi(value)
		if err != nil {
			fail(fmt.Errorf("invalid age %q", value))
		}
		p.Age = v
	case "activity":
		p.ActivityLevel = value
	default:
		fmt.Fprintf(os.Stderr, "unknown profile field: %s\n", field)
		os.Exit(1)
	}
	c.do(http.MethodPut, "/v1/profile", p, &p)
	if c.jsonOut {
		outputJSON(p)
		return
	}
	fmt.Println("Profile updated.")
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
