package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry resolves typed words to commands.
type Registry struct {
	// byWord holds every canonical name and alias.
	byWord map[string]*Command
	// sorted lists each command once, ordered by name.
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: Every command has a Name and a Handler; no word is claimed twice.
// Postcondition: Returns a Registry or an error naming the first collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" || cmd.Handler == "" {
			return nil, fmt.Errorf("command %d: name and handler are required", i)
		}
		if prev, taken := r.byWord[cmd.Name]; taken {
			if prev.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, prev.Name)
		}
		r.byWord[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			prev, taken := r.byWord[alias]
			switch {
			case !taken:
				r.byWord[alias] = cmd
			case prev.Name == alias:
				return nil, fmt.Errorf("alias %q of %q conflicts with a command name", alias, cmd.Name)
			default:
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, prev.Name, cmd.Name)
			}
		}
		r.sorted = append(r.sorted, cmd)
	}
	slices.SortFunc(r.sorted, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry indexes BuiltinCommands. It panics if they collide.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(word)]
	return cmd, ok
}

// Suggest returns the canonical name closest to an unrecognised word: the
// only command whose name starts with it, else the nearest name within two
// edits. ok is false when nothing is close enough or the match is ambiguous.
func (r *Registry) Suggest(word string) (name string, ok bool) {
	word = strings.ToLower(word)
	if word == "" {
		return "", false
	}
	var prefixed []string
	for _, cmd := range r.sorted {
		if strings.HasPrefix(cmd.Name, word) {
			prefixed = append(prefixed, cmd.Name)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], true
	}

	best, bestDist, tie := "", 3, false
	for _, cmd := range r.sorted {
		d := editDistance(word, cmd.Name)
		switch {
		case d < bestDist:
			best, bestDist, tie = cmd.Name, d, false
		case d == bestDist:
			tie = true
		}
	}
	if best == "" || tie {
		return "", false
	}
	return best, true
}

// Commands returns every command once, sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.sorted)
}

// CommandsByCategory groups Commands by Category; each group keeps name order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}

// editDistance is the Levenshtein distance between two ASCII words.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
