// Package tui provides an opt-in Bubble Tea progress view for uploads.
//
// The view is display-only: it consumes the same progress events the
// logging path sees and never feeds anything back into the engine.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emberware/coredrain/types"
)

// ChunkMsg reports one delivered chunk.
type ChunkMsg struct {
	Index     int
	BytesSent int
}

// DoneMsg reports the end of the upload.
type DoneMsg struct {
	Err error
}

// Model renders a single upload session.
type Model struct {
	desc      *types.ImageDescriptor
	deviceID  string
	transport string

	bar       progress.Model
	chunks    int
	wireBytes int

	done bool
	err  error
}

// NewModel creates a progress model for the given session.
func NewModel(deviceID, transportName string, desc *types.ImageDescriptor) Model {
	return Model{
		desc:      desc,
		deviceID:  deviceID,
		transport: transportName,
		bar:       progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChunkMsg:
		m.chunks = msg.Index + 1
		m.wireBytes += msg.BytesSent
		cmd := m.bar.SetPercent(float64(m.chunks) / float64(m.desc.ChunkCount))
		return m, cmd

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		// Display only; no way to cancel from the view.
		return m, nil

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	title := TitleStyle.Render(fmt.Sprintf("coredump upload — %s via %s", m.deviceID, m.transport))

	body := fmt.Sprintf("%s%d bytes in %d chunks\n%s%d/%d (%d wire bytes)\n\n%s",
		LabelStyle.Render("image"), m.desc.TotalSize, m.desc.ChunkCount,
		LabelStyle.Render("delivered"), m.chunks, m.desc.ChunkCount, m.wireBytes,
		m.bar.View(),
	)

	status := ""
	if m.done {
		if m.err != nil {
			status = "\n" + ErrorStyle.Render(fmt.Sprintf("failed: %v", m.err))
		} else {
			status = "\n" + SuccessStyle.Render("committed: image delivered and erased")
		}
	}

	return BoxStyle.Render(title+"\n"+body+status) + "\n"
}
