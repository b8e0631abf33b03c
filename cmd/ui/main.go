// Command ui is the desktop front end: a task list with inline create,
// complete and delete, and an assistant chat page. It calls the core
// directly; model calls run off the interaction thread so the window stays
// responsive.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/pkg/assist"
	"taskdesk/pkg/manager"
	"taskdesk/pkg/task"
)

var theme *material.Theme

// Pages
const (
	pageTasks = iota
	pageAssistant
)

type chatMessage struct {
	From    string
	Content string
	Time    time.Time
}

type UI struct {
	win     *app.Window
	mgr     *manager.Manager
	assist  *assist.Client
	ctx     context.Context

	currentPage int

	// Nav buttons
	navTasks     widget.Clickable
	navAssistant widget.Clickable

	// Tasks
	taskList      widget.List
	tasks         []task.Task
	newTaskEditor widget.Editor
	createBtn     widget.Clickable
	refreshBtn    widget.Clickable
	doneBtn       []widget.Clickable
	deleteBtn     []widget.Clickable

	// Assistant
	chatList     widget.List
	chatMessages []chatMessage
	chatEditor   widget.Editor
	chatSendBtn  widget.Clickable
}

func main() {
	configPath := flag.String("config", config.DefaultPath(), "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	handle, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{
		mgr:    manager.New(handle.Store),
		assist: assist.New(assist.NewGroqCompleter(cfg.Model)),
		ctx:    ctx,
	}
	ui.taskList.Axis = layout.Vertical
	ui.chatList.Axis = layout.Vertical
	ui.newTaskEditor.SingleLine = true
	ui.chatEditor.SingleLine = true

	go func() {
		w := new(app.Window)
		w.Option(app.Title("taskdesk"))
		w.Option(app.Size(unit.Dp(900), unit.Dp(680)))
		ui.win = w
		ui.fetchTasks()
		err := ui.run(w)
		if closeErr := handle.Close(); closeErr != nil {
			log.Printf("ui: close store: %v", closeErr)
		}
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.handleClicks(gtx)
			ui.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context) {
	if ui.navTasks.Clicked(gtx) {
		ui.currentPage = pageTasks
	}
	if ui.navAssistant.Clicked(gtx) {
		ui.currentPage = pageAssistant
	}
	if ui.refreshBtn.Clicked(gtx) {
		go ui.fetchTasks()
	}
	if ui.createBtn.Clicked(gtx) {
		title := ui.newTaskEditor.Text()
		if title != "" {
			go ui.createTask(title)
			ui.newTaskEditor.SetText("")
		}
	}
	if ui.chatSendBtn.Clicked(gtx) {
		msg := ui.chatEditor.Text()
		if msg != "" {
			go ui.sendChat(msg)
			ui.chatEditor.SetText("")
		}
	}
	for i := range ui.doneBtn {
		if i < len(ui.tasks) && ui.doneBtn[i].Clicked(gtx) {
			go ui.completeTask(ui.tasks[i].ID)
		}
	}
	for i := range ui.deleteBtn {
		if i < len(ui.tasks) && ui.deleteBtn[i].Clicked(gtx) {
			go ui.deleteTask(ui.tasks[i].ID)
		}
	}
}

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				if ui.currentPage == pageAssistant {
					return ui.layoutAssistant(gtx)
				}
				return ui.layoutTasks(gtx)
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(160))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(160))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "taskdesk")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navTasks, "Tasks", ui.currentPage == pageTasks)),
		layout.Rigid(navBtn(theme, &ui.navAssistant, "Assistant", ui.currentPage == pageAssistant)),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func (ui *UI) layoutTasks(gtx layout.Context) layout.Dimensions {
	// Keep per-row button slices in step with the data
	for len(ui.doneBtn) < len(ui.tasks) {
		ui.doneBtn = append(ui.doneBtn, widget.Clickable{})
		ui.deleteBtn = append(ui.deleteBtn, widget.Clickable{})
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, "Tasks").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return material.Editor(theme, &ui.newTaskEditor, "New task title...").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.createBtn, "Create").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.refreshBtn, "Refresh").Layout(gtx)
				}),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.taskList).Layout(gtx, len(ui.tasks), func(gtx layout.Context, i int) layout.Dimensions {
				t := ui.tasks[i]
				stateColor := color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
				switch t.State {
				case task.StatePending:
					stateColor = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
				case task.StateInProgress:
					stateColor = color.NRGBA{R: 0x00, G: 0xA0, B: 0xFF, A: 0xFF}
				case task.StateDone:
					stateColor = color.NRGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
				}
				title := t.Title
				if t.ParentID != nil {
					title = "    ↳ " + title
				}
				return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
						layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
							return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
								layout.Rigid(func(gtx layout.Context) layout.Dimensions {
									label := material.Body2(theme, title)
									label.Font.Weight = font.Bold
									return label.Layout(gtx)
								}),
								layout.Rigid(func(gtx layout.Context) layout.Dimensions {
									meta := fmt.Sprintf("[%s] %s %s", t.State, t.Priority, t.DueAt)
									label := material.Caption(theme, meta)
									label.Color = stateColor
									return label.Layout(gtx)
								}),
							)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							if t.State == task.StateDone {
								return layout.Dimensions{}
							}
							return material.Button(theme, &ui.doneBtn[i], "Done").Layout(gtx)
						}),
						layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							btn := material.Button(theme, &ui.deleteBtn[i], "Delete")
							btn.Background = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
							return btn.Layout(gtx)
						}),
					)
				})
			})
		}),
	)
}

func (ui *UI) layoutAssistant(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, "Assistant").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.chatList).Layout(gtx, len(ui.chatMessages), func(gtx layout.Context, i int) layout.Dimensions {
				msg := ui.chatMessages[i]
				return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Body2(theme, fmt.Sprintf("[%s] %s: %s", msg.Time.Format("15:04"), msg.From, msg.Content))
					return label.Layout(gtx)
				})
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return material.Editor(theme, &ui.chatEditor, "Ask about your tasks...").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.chatSendBtn, "Send").Layout(gtx)
				}),
			)
		}),
	)
}

// Data operations. Each runs on its own goroutine and invalidates the
// window when done.

func (ui *UI) fetchTasks() {
	tasks, err := ui.mgr.ListAll(ui.ctx, true)
	if err != nil {
		log.Printf("ui: list tasks: %v", err)
		return
	}
	ui.tasks = tasks
	ui.invalidate()
}

func (ui *UI) createTask(title string) {
	_, err := ui.mgr.Create(ui.ctx, title, "", "", "", "", nil)
	if err != nil {
		log.Printf("ui: create task: %v", err)
		return
	}
	ui.fetchTasks()
}

func (ui *UI) completeTask(id int64) {
	if _, err := ui.mgr.Update(ui.ctx, id, map[string]any{"estado": task.StateDone}); err != nil {
		log.Printf("ui: complete task %d: %v", id, err)
		return
	}
	ui.fetchTasks()
}

func (ui *UI) deleteTask(id int64) {
	if _, err := ui.mgr.Delete(ui.ctx, id); err != nil {
		log.Printf("ui: delete task %d: %v", id, err)
		return
	}
	ui.fetchTasks()
}

func (ui *UI) sendChat(msg string) {
	ui.chatMessages = append(ui.chatMessages, chatMessage{
		From:    "you",
		Content: msg,
		Time:    time.Now(),
	})
	ui.invalidate()

	reply := ui.assist.Chat(ui.ctx, msg, ui.tasks)
	ui.chatMessages = append(ui.chatMessages, chatMessage{
		From:    "assistant",
		Content: reply.Text,
		Time:    time.Now(),
	})
	for _, a := range reply.SuggestedActions {
		ui.chatMessages = append(ui.chatMessages, chatMessage{
			From:    "assistant",
			Content: "suggested: " + a,
			Time:    time.Now(),
		})
	}
	ui.invalidate()
}

func (ui *UI) invalidate() {
	if ui.win != nil {
		ui.win.Invalidate()
	}
}
