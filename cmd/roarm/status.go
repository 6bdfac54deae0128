package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/roarm/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type StatusCommand struct {
	TimeoutMs int  `long:"timeout" description:"Query timeout in milliseconds (default from configuration)"`
	JSON      bool `long:"json" description:"Print as JSON"`
}

func (c *StatusCommand) Execute(args []string) error {
	s, err := openSession(os.Stderr, false)
	if err != nil {
		return err
	}
	defer s.Close()

	timeout := s.cfg.QueryTimeout()
	if c.TimeoutMs > 0 {
		timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	}
	if _, err := s.engine.QueryStatus(context.Background(), timeout); err != nil {
		return err
	}
	pose, torques, _ := s.engine.Snapshot()

	if c.JSON {
		data, err := json.MarshalIndent(struct {
			Pose    robot.Pose    `json:"pose"`
			Torques robot.Torques `json:"torques"`
		}{pose, torques}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(headerStyle.Render("Arm status"))
	fmt.Println(renderStatus(pose, torques))
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderStatus renders pose and torques as a table.
func renderStatus(p robot.Pose, t robot.Torques) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)

	axes := [][2]string{
		{"x", formatValue(p.X)},
		{"y", formatValue(p.Y)},
		{"z", formatValue(p.Z)},
		{"t (clamp)", formatValue(p.T)},
		{"b", formatValue(p.B)},
		{"s", formatValue(p.S)},
		{"e", formatValue(p.E)},
	}
	joints := robot.AllJoints()
	torques := t.ByJoint()

	rows := make([][]string, len(axes))
	for i, a := range axes {
		rows[i] = []string{a[0], a[1], "", ""}
		if i < len(joints) {
			rows[i][2] = string(joints[i])
			rows[i][3] = formatValue(torques[joints[i]])
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Axis", "Value", "Joint", "Torque").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 || col == 2 {
				return nameStyle
			}
			return cellStyle
		})
	return tbl.Render()
}
