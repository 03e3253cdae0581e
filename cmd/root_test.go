package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/pflag"

	"github.com/iksnae/chatloop/testutil"
)

// resetFlags restores every flag to its default so tests don't leak state
// through the shared rootCmd.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	reset(rootCmd.Flags())
	reset(healthcheckCmd.Flags())
	t.Setenv("OPENAI_API_KEY", "")
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), err
}

type fakeAPI struct {
	chat      *httptest.Server
	time      *httptest.Server
	chatCalls atomic.Int32
	lastAuth  atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.chat = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.chatCalls.Add(1)
		api.lastAuth.Store(r.Header.Get("Authorization"))
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &req)
		reply := "echo: " + req.Messages[0].Content
		out, _ := json.Marshal(map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
		_, _ = w.Write(out)
	}))
	api.time = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testutil.TimeResponse("2024-01-01T12:00:00+01:00")))
	}))
	t.Cleanup(func() {
		api.chat.Close()
		api.time.Close()
	})
	return api
}

func (a *fakeAPI) args(extra ...string) []string {
	return append([]string{"--endpoint", a.chat.URL, "--time-endpoint", a.time.URL, "--retry-delay", "1ms"}, extra...)
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "unexpected argument", args: []string{"hello"}, wantErr: true},
		{name: "negative retries", args: []string{"--retries", "-1", "--api-key", "k"}, wantErr: true},
		{name: "bad endpoint", args: []string{"--endpoint", "not a url", "--api-key", "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "exit\n", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChatSession_PromptsForKey(t *testing.T) {
	api := newFakeAPI(t)

	out, err := execute(t, "sk-typed\nhello\nexit\n", api.args()...)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.HasPrefix(out, "Enter your OpenAI API key: ") {
		t.Errorf("output should start with the key prompt:\n%s", out)
	}
	if got, _ := api.lastAuth.Load().(string); got != "Bearer sk-typed" {
		t.Errorf("Authorization = %q, want Bearer sk-typed", got)
	}
	for _, want := range []string{
		"Chatbot (type 'exit' to quit):",
		"[Response time: ",
		"Assistant: echo: hello\n",
		"--- Conversation (#1) ---",
		"[1] User: hello",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestChatSession_KeyFromEnvironment(t *testing.T) {
	api := newFakeAPI(t)
	resetFlags(t)

	var stdout bytes.Buffer
	rootCmd.SetArgs(api.args())
	rootCmd.SetIn(strings.NewReader("hello\nexit\n"))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(io.Discard)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(stdout.String(), "Enter your OpenAI API key") {
		t.Error("should not prompt when the key is in the environment")
	}
	if got, _ := api.lastAuth.Load().(string); got != "Bearer sk-env" {
		t.Errorf("Authorization = %q, want Bearer sk-env", got)
	}
}

func TestChatSession_CommandsAndTime(t *testing.T) {
	api := newFakeAPI(t)

	out, err := execute(t, "my name is Alex\nYour name is now Robo\nwhat time in Italy is it?\nexit\n", api.args("--api-key", "sk")...)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if api.chatCalls.Load() != 0 {
		t.Errorf("commands reached the chat API %d times", api.chatCalls.Load())
	}
	for _, want := range []string{
		"Assistant: Nice to meet you, Alex!",
		"Robo: Got it, I'll call myself Robo.",
		"Robo: The current time in Italy is 2024-01-01T12:00:00+01:00",
		"Alex: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestChatSession_UnreachableEndpoint(t *testing.T) {
	api := newFakeAPI(t)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	out, err := execute(t, "hello\nexit\n", "--api-key", "sk", "--endpoint", deadURL, "--time-endpoint", api.time.URL, "--retries", "2", "--retry-delay", "1ms")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Assistant: Sorry, I couldn't parse the response.") {
		t.Errorf("expected fallback reply:\n%s", out)
	}
}

func TestChatSession_ExportAndArchive(t *testing.T) {
	api := newFakeAPI(t)
	dir := t.TempDir()
	exportFile := filepath.Join(dir, "chat.json")
	archiveFile := filepath.Join(dir, "turns.db")

	_, err := execute(t, "hello\ntime in Italy\nexit\n", api.args("--api-key", "sk", "--export", exportFile, "--archive", archiveFile, "--plain")...)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	var snap struct {
		ID    string `json:"id"`
		Turns []struct {
			Input string `json:"input"`
			Reply string `json:"reply"`
		} `json:"turns"`
		Stats struct {
			ChatTurns int `json:"chat_turns"`
		} `json:"stats"`
	}
	testutil.JSONUnmarshal(t, data, &snap)
	if snap.ID == "" || len(snap.Turns) != 2 || snap.Stats.ChatTurns != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Turns[0].Reply != "echo: hello" {
		t.Errorf("first reply = %q", snap.Turns[0].Reply)
	}
	db := testutil.OpenArchiveDB(t, archiveFile)
	if got := testutil.CountRows(t, db, "turns"); got != 2 {
		t.Errorf("archived turns = %d, want 2", got)
	}
}

func TestChatSession_ConfigFile(t *testing.T) {
	api := newFakeAPI(t)
	cfgPath := testutil.WriteConfigFixture(t, t.TempDir(), api.chat.URL, api.time.URL, "session:\n  user_name: Sam\n")

	out, err := execute(t, "exit\n", "--config", cfgPath, "--api-key", "sk")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Sam: ") {
		t.Errorf("prompt should use configured user name:\n%s", out)
	}
}

func TestExecute(t *testing.T) {
	_, err := execute(t, "", "nonexistent-command")
	if err == nil {
		t.Error("Execute() should return error for nonexistent command")
	}
}
