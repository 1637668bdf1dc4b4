package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
	out   []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) println(a ...any) {
	f.out = append(f.out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}
func (f *fakeExec) Register(context.Context) error {
	f.loggedIn = true
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error        { return f.record("whoami") }
func (f *fakeExec) Profile(context.Context) error       { return f.record("profile") }
func (f *fakeExec) Passwd(context.Context) error        { return f.record("passwd") }
func (f *fakeExec) DeleteAccount(context.Context) error { return f.record("delete-account") }
func (f *fakeExec) NewThread(context.Context) error     { return f.record("new") }
func (f *fakeExec) Threads(context.Context) error       { return f.record("threads") }
func (f *fakeExec) Show(context.Context) error          { return f.record("show") }
func (f *fakeExec) Images(context.Context) error        { return f.record("images") }
func (f *fakeExec) Select(_ context.Context, ref string) error {
	return f.record("select " + ref)
}
func (f *fakeExec) Rm(_ context.Context, ref string) error { return f.record("rm " + ref) }
func (f *fakeExec) Model(_ context.Context, name string) error {
	return f.record("model " + name)
}
func (f *fakeExec) Send(_ context.Context, text string) error { return f.record("send " + text) }
func (f *fakeExec) Image(_ context.Context, prompt string) error {
	return f.record("image " + prompt)
}
func (f *fakeExec) RmImage(_ context.Context, id string) error { return f.record("rmimage " + id) }
func (f *fakeExec) Export(_ context.Context, path string) error {
	return f.record("export " + path)
}
func (f *fakeExec) Import(_ context.Context, path string) error {
	return f.record("import " + path)
}

func lines(ls ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(ls, "\n")))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := &fakeExec{}
	in := lines(
		"login",
		"send   Hello there, world  ",
		"image a red fox",
		"select 2",
		"rm 0193",
		"model gpt-4o-mini",
		"new",
		"threads",
		"show",
		"images",
		"rmimage abc",
		"export /tmp/x.vny",
		"whoami",
		"profile",
		"passwd",
		"delete-account",
		"logout",
		"exit",
		"show",
	)

	runREPL(context.Background(), exec, func() string { return "" }, in)

	assert.Equal(t, []string{
		"login",
		"send Hello there, world",
		"image a red fox",
		"select 2",
		"rm 0193",
		"model gpt-4o-mini",
		"new",
		"threads",
		"show",
		"images",
		"rmimage abc",
		"export /tmp/x.vny",
		"whoami",
		"profile",
		"passwd",
		"delete-account",
		"logout",
	}, exec.calls)
}

func TestRunREPL_SignedOutGating(t *testing.T) {
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, lines("send hi", "help", "import f.vny", "quit"))

	assert.Equal(t, []string{"import f.vny"}, exec.calls)
	assert.Contains(t, exec.out, "Please register or login first")
	assert.Contains(t, exec.out, helpSignedOut)
	assert.Contains(t, exec.out, "Bye!")
}

func TestRunREPL_UsageUnknownAndErrors(t *testing.T) {
	exec := &fakeExec{loggedIn: true, failWith: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return " (a@b.com)" }, lines("help", "send", "frobnicate", "show", ""))

	assert.Equal(t, []string{"show"}, exec.calls)
	assert.Contains(t, exec.out, helpSignedIn)
	assert.Contains(t, exec.out, "Usage: send <text>")
	assert.Contains(t, exec.out, "Unknown command: frobnicate")
	assert.Contains(t, exec.out, "Error: boom")
	assert.Contains(t, exec.out, "vinony (a@b.com)> ")
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("show")))

	assert.Equal(t, []string{"show"}, exec.calls)
}
