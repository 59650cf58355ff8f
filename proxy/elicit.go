package proxy

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/jsonrpc"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// formElicitor answers backend elicitation requests with a local web form.
// It only comes into play when the connected frontend does not advertise
// elicitation support; the bridge promises the full backchannel to the
// backend either way.
type formElicitor struct {
	listenAddr  string
	openBrowser bool
	logger      *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	baseURL  string
	sessions map[string]*elicitSession
	closed   bool
}

// elicitSession holds one pending request so the form can render from the
// requested schema rather than from values round-tripped through the URL.
type elicitSession struct {
	request *schema.ElicitRequest
	done    chan *schema.ElicitResult
}

func newFormElicitor(listenAddr string, openBrowser bool, logger *slog.Logger) *formElicitor {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	return &formElicitor{
		listenAddr:  listenAddr,
		openBrowser: openBrowser,
		logger:      logger,
		sessions:    map[string]*elicitSession{},
	}
}

// ensureLocked starts the form server on first use. Callers hold e.mu.
func (e *formElicitor) ensureLocked() error {
	if e.server != nil {
		return nil
	}
	ln, err := net.Listen("tcp", e.listenAddr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/elicit", e.handleForm)
	mux.HandleFunc("/submit", e.handleSubmit)
	mux.HandleFunc("/action", e.handleAction)
	e.server = &http.Server{Handler: mux}
	e.baseURL = "http://" + ln.Addr().String()
	go func() { _ = e.server.Serve(ln) }()
	return nil
}

// open registers a pending elicitation and returns its form URL together
// with the channel the submitted result arrives on.
func (e *formElicitor) open(request *schema.ElicitRequest) (string, <-chan *schema.ElicitResult, error) {
	id := request.Params.ElicitationId
	if id == "" {
		return "", nil, fmt.Errorf("elicitation id is empty")
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", nil, ErrConnectionClosed
	}
	if err := e.ensureLocked(); err != nil {
		e.mu.Unlock()
		return "", nil, err
	}
	session := &elicitSession{request: request, done: make(chan *schema.ElicitResult, 1)}
	e.sessions[id] = session
	formURL := e.baseURL + "/elicit?id=" + url.QueryEscape(id)
	e.mu.Unlock()

	e.logger.Info("elicitation form ready", "url", formURL, "message", request.Params.Message)
	if e.openBrowser {
		openBrowser(formURL)
	}
	return formURL, session.done, nil
}

func (e *formElicitor) session(id string) *elicitSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[id]
}

// finish delivers the result and retires the session. A session that was
// already finished or discarded is ignored.
func (e *formElicitor) finish(id string, result *schema.ElicitResult) {
	e.mu.Lock()
	session := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()
	if session == nil {
		return
	}
	session.done <- result
	close(session.done)
}

// discard drops a pending session without delivering a result, e.g. when the
// backend gave up waiting.
func (e *formElicitor) discard(id string) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
}

// close aborts every pending session and stops the form server.
func (e *formElicitor) close() {
	e.mu.Lock()
	e.closed = true
	server := e.server
	e.server = nil
	sessions := e.sessions
	e.sessions = map[string]*elicitSession{}
	e.mu.Unlock()
	for _, session := range sessions {
		close(session.done)
	}
	if server != nil {
		_ = server.Close()
	}
}

func (e *formElicitor) handleForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	session := e.session(id)
	if session == nil {
		http.Error(w, "unknown elicitation", http.StatusNotFound)
		return
	}
	params := &session.request.Params
	data := formPageData{
		ID:      id,
		Message: params.Message,
		Link:    params.Url,
		IsLink:  params.Mode == "url" && params.Url != "",
		Fields:  formFields(params),
	}
	if data.IsLink {
		if parsed, err := url.Parse(params.Url); err == nil {
			data.Host = parsed.Host
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formPage.Execute(w, data); err != nil {
		e.logger.Warn("elicitation form render failed", "error", err)
	}
}

func (e *formElicitor) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("id")
	session := e.session(id)
	if session == nil {
		http.Error(w, "unknown elicitation", http.StatusNotFound)
		return
	}
	content, problems := decodeSubmission(&session.request.Params, r.PostForm)
	if len(problems) > 0 {
		http.Error(w, "missing or invalid: "+strings.Join(problems, ", "), http.StatusBadRequest)
		return
	}
	e.finish(id, &schema.ElicitResult{Action: schema.ElicitResultActionAccept, Content: content})
	fmt.Fprintln(w, "Submitted. You can close this page.")
}

func (e *formElicitor) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.Form.Get("id")
	action := r.Form.Get("act")
	switch action {
	case "accept", "decline", "cancel":
	default:
		http.Error(w, "unsupported action", http.StatusBadRequest)
		return
	}
	if e.session(id) == nil {
		http.Error(w, "unknown elicitation", http.StatusNotFound)
		return
	}
	e.finish(id, &schema.ElicitResult{Action: schema.ElicitResultAction(action)})
	fmt.Fprintf(w, "Recorded: %s\n", action)
}

type formField struct {
	Name     string
	Type     string
	Title    string
	Required bool
}

type formPageData struct {
	ID      string
	Message string
	IsLink  bool
	Link    string
	Host    string
	Fields  []formField
}

// formFields orders the requested properties by name for stable rendering.
func formFields(params *schema.ElicitRequestParams) []formField {
	required := map[string]bool{}
	for _, name := range params.RequestedSchema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(params.RequestedSchema.Properties))
	for name := range params.RequestedSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	ret := make([]formField, 0, len(names))
	for _, name := range names {
		field := formField{Name: name, Title: name, Type: "string", Required: required[name]}
		if spec, ok := params.RequestedSchema.Properties[name].(map[string]interface{}); ok {
			if v, ok := spec["type"].(string); ok && v != "" {
				field.Type = v
			}
			if v, ok := spec["title"].(string); ok && v != "" {
				field.Title = v
			}
		}
		ret = append(ret, field)
	}
	return ret
}

// decodeSubmission coerces form values per the requested schema. Unchecked
// booleans decode as false rather than as a missing field.
func decodeSubmission(params *schema.ElicitRequestParams, form url.Values) (map[string]interface{}, []string) {
	content := map[string]interface{}{}
	var problems []string
	for _, field := range formFields(params) {
		raw := strings.TrimSpace(form.Get(field.Name))
		if field.Type == "boolean" {
			content[field.Name] = raw == "true"
			continue
		}
		if raw == "" {
			if field.Required {
				problems = append(problems, field.Name)
			}
			continue
		}
		switch field.Type {
		case "number":
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				problems = append(problems, field.Name)
				continue
			}
			content[field.Name] = value
		case "integer":
			value, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				problems = append(problems, field.Name)
				continue
			}
			content[field.Name] = value
		default:
			content[field.Name] = raw
		}
	}
	sort.Strings(problems)
	return content, problems
}

// openBrowser starts the platform launcher for formURL, best effort.
func openBrowser(formURL string) {
	candidates := [][]string{
		{"open", formURL},
		{"xdg-open", formURL},
		{"powershell", "Start-Process", formURL},
	}
	for _, candidate := range candidates {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			_ = exec.Command(candidate[0], candidate[1:]...).Start()
			return
		}
	}
}

var formPage = template.Must(template.New("elicit").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Input required</title>
<style>
body{font-family:sans-serif;max-width:40rem;margin:3rem auto;padding:0 1rem}
label{display:block;margin-top:1rem;font-weight:bold}
input[type=text],input[type=number]{width:100%;padding:0.5rem;margin-top:0.25rem}
.required{color:#b00}
.buttons{margin-top:1.5rem}
button,a.btn{display:inline-block;padding:0.5rem 1rem;margin-right:0.5rem;border:1px solid #888;border-radius:4px;background:#eee;color:#000;text-decoration:none}
</style>
</head>
<body>
<h1>Input required</h1>
<p>{{.Message}}</p>
{{if .IsLink}}
<p><a class="btn" href="{{.Link}}" target="_blank" rel="noopener">Open {{.Host}}</a></p>
<form method="post" action="/action">
<input type="hidden" name="id" value="{{.ID}}">
<div class="buttons">
<button name="act" value="accept">Done</button>
<button name="act" value="decline">Decline</button>
<button name="act" value="cancel">Cancel</button>
</div>
</form>
{{else}}
<form method="post" action="/submit">
<input type="hidden" name="id" value="{{.ID}}">
{{range .Fields}}
<label for="{{.Name}}">{{.Title}}{{if .Required}} <span class="required">*</span>{{end}}</label>
{{if eq .Type "boolean"}}<input type="checkbox" id="{{.Name}}" name="{{.Name}}" value="true">
{{else if eq .Type "number"}}<input type="number" step="any" id="{{.Name}}" name="{{.Name}}">
{{else if eq .Type "integer"}}<input type="number" step="1" id="{{.Name}}" name="{{.Name}}">
{{else}}<input type="text" id="{{.Name}}" name="{{.Name}}">
{{end}}
{{end}}
<div class="buttons">
<button type="submit">Submit</button>
<a class="btn" href="/action?id={{.ID}}&act=decline">Decline</a>
<a class="btn" href="/action?id={{.ID}}&act=cancel">Cancel</a>
</div>
</form>
{{end}}
</body>
</html>
`))

// elicitOps augments a frontend's operations with the form fallback so
// backend elicitation keeps working against frontends that lack it.
type elicitOps struct {
	protoclient.Operations
	fallback *formElicitor
}

func (o *elicitOps) Implements(method string) bool {
	return o.Operations.Implements(method) || method == schema.MethodElicitationCreate
}

func (o *elicitOps) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	if o.Operations.Implements(schema.MethodElicitationCreate) {
		return o.Operations.Elicit(ctx, request)
	}
	_, done, err := o.fallback.open(request.Request)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	select {
	case <-ctx.Done():
		o.fallback.discard(request.Request.Params.ElicitationId)
		return nil, jsonrpc.NewInternalError(ctx.Err().Error(), nil)
	case result, ok := <-done:
		if !ok || result == nil {
			return nil, jsonrpc.NewInternalError("elicitation aborted", nil)
		}
		return result, nil
	}
}
