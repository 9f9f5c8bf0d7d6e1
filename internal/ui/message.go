package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSignedIn MsgKind = iota
	MsgRegistered
	MsgHomeLoaded
	MsgPopularLoaded
	MsgFeedLoaded
	MsgSearchLoaded
	MsgProgressUpdate
)

// progress carries an update and the command that waits for the next one.
type progress struct {
	update tasks.ProgressUpdate
	next   tea.Cmd
}

// signedInMsg is the constructor for [MsgSignedIn]
func signedInMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgSignedIn, data: user, err: err}
}

// registeredMsg is the constructor for [MsgRegistered]
func registeredMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgRegistered, data: user, err: err}
}

// homeLoadedMsg is the constructor for [MsgHomeLoaded]
func homeLoadedMsg(feed *tasks.HomeFeed, err error) Msg {
	return Msg{kind: MsgHomeLoaded, data: feed, err: err}
}

// popularLoadedMsg is the constructor for [MsgPopularLoaded]
func popularLoadedMsg(page *tasks.TablePage, err error) Msg {
	return Msg{kind: MsgPopularLoaded, data: page, err: err}
}

// feedLoadedMsg is the constructor for [MsgFeedLoaded]
func feedLoadedMsg(feed *tasks.InfiniteFeed, err error) Msg {
	return Msg{kind: MsgFeedLoaded, data: feed, err: err}
}

// searchLoadedMsg is the constructor for [MsgSearchLoaded]
func searchLoadedMsg(result *tasks.SearchResult, err error) Msg {
	return Msg{kind: MsgSearchLoaded, data: result, err: err}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate, next tea.Cmd) Msg {
	return Msg{kind: MsgProgressUpdate, data: progress{update: update, next: next}}
}
