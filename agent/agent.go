package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is an interactive chat about DCA plans. The user talks to a
// facilitator that delegates to the experts.
type Agent struct {
	Facilitator *Expert
	Experts     []*Expert

	out     io.Writer
	in      *bufio.Reader
	scripts []string // inputs answered before reading in
}

// New returns an Agent reading user input from in and writing answers to out.
func New(out io.Writer, in io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		Facilitator: newFacilitator(experts...),
		Experts:     experts,
		out:         out,
		in:          bufio.NewReader(in),
	}
}

// Start opens the chat of the facilitator and of every expert.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append([]*Expert{a.Facilitator}, a.Experts...) {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return nil
}

// Run answers prompts, then what the user types, until "bye" or the end of
// the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if !a.Facilitator.started() {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	a.scripts = append(a.scripts, prompts...)

	fmt.Fprintln(a.out, "Welcome to dcasim assist. Type 'bye' to exit.")
	for {
		input, err := a.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if input == "bye" {
			return nil
		}
		answer, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, textOf(answer))
	}
}

// next prompts for and returns the next non blank input. Scripted inputs are
// echoed as if typed.
func (a *Agent) next() (string, error) {
	for {
		fmt.Fprint(a.out, "assist> ")
		if len(a.scripts) > 0 {
			input := strings.TrimSpace(a.scripts[0])
			a.scripts = a.scripts[1:]
			fmt.Fprintln(a.out, input)
			if input != "" {
				return input, nil
			}
			continue
		}
		line, err := a.in.ReadString('\n')
		if input := strings.TrimSpace(line); input != "" {
			return input, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// textOf concatenates the text parts of a content.
func textOf(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
