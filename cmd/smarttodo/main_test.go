package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// assistantReply is what the fake messages endpoint answers with.
const assistantReply = `Here are a few ideas:
• Fix login bug for Website
• Book flights`

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"smarttodo": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			home := filepath.Join(env.WorkDir, "home")
			if err := os.MkdirAll(home, 0o755); err != nil {
				return err
			}
			env.Setenv("HOME", home)
			env.Setenv("SMARTTODO_STORE_PATH", filepath.Join(env.WorkDir, "smart-todo.db"))

			srv := httptest.NewServer(http.HandlerFunc(fakeMessages))
			env.Defer(srv.Close)
			env.Setenv("SMARTTODO_AI_BASE_URL", srv.URL)
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"jsonid": cmdJSONID,
		},
	})
}

func fakeMessages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/messages" || r.Header.Get("x-api-key") == "" {
		http.Error(w, `{"error":{"type":"not_found_error","message":"unexpected request"}}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content": []map[string]string{{"type": "text", "text": assistantReply}},
	})
}

// cmdJSONID finds the object in a JSON array whose FIELD equals VALUE and
// stores its id in VAR.
func cmdJSONID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("jsonid does not support negation")
	}
	if len(args) != 4 {
		ts.Fatalf("usage: jsonid FILE FIELD VALUE VAR")
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse %s: %v", args[0], err)
	}
	for _, item := range items {
		if fmt.Sprint(item[args[1]]) == args[2] {
			ts.Setenv(args[3], fmt.Sprint(item["id"]))
			return
		}
	}
	ts.Fatalf("no item with %s=%q in %s", args[1], args[2], args[0])
}
