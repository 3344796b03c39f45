package catalog

import (
	"sort"
	"strings"
	"sync"

	"sonashow/internal/textutil"
)

// Item is one library entry as shown in the sidebar.
type Item struct {
	Name string `json:"name"`
	// Owned is set once an acquisition made during this process succeeds.
	Owned bool `json:"owned"`
	// Checked marks the entry as a seed of the current discovery session.
	Checked bool `json:"checked"`

	title string
}

// Index is a concurrency-safe set of owned titles. Items are keyed by the
// library title so distinct series sharing a display name stay separate.
type Index struct {
	mu    sync.RWMutex
	keys  map[string]struct{}
	items map[string]*Item
}

// New returns an empty index.
func New() *Index {
	return &Index{
		keys:  make(map[string]struct{}),
		items: make(map[string]*Item),
	}
}

// Contains reports whether name normalizes to an owned title.
func (i *Index) Contains(name string) bool {
	key := textutil.NormalizeKey(name)
	if key == "" {
		return false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.keys[key]
	return ok
}

// Add records name as owned. Adding an existing title only flips Owned.
func (i *Index) Add(name string) {
	name = strings.TrimSpace(name)
	key := textutil.NormalizeKey(name)
	if key == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys[key] = struct{}{}
	if item, ok := i.items[name]; ok {
		item.Owned = true
		return
	}
	for _, item := range i.items {
		if item.Name == name {
			item.Owned = true
			return
		}
	}
	i.items[name] = &Item{Name: name, Owned: true, title: name}
}

// ReplaceAll swaps the whole index for a freshly fetched library listing.
// Each distinct title gets one entry shown in its display form.
func (i *Index) ReplaceAll(titles []string) {
	keys := make(map[string]struct{}, len(titles))
	items := make(map[string]*Item, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		name := textutil.DisplayTitle(title)
		key := textutil.NormalizeKey(name)
		if key == "" {
			continue
		}
		keys[key] = struct{}{}
		if _, ok := items[title]; !ok {
			items[title] = &Item{Name: name, title: title}
		}
	}
	i.mu.Lock()
	i.keys = keys
	i.items = items
	i.mu.Unlock()
}

// Len returns the number of display entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}

// Items returns a snapshot of the display list sorted case-insensitively.
func (i *Index) Items() []Item {
	i.mu.RLock()
	out := make([]Item, 0, len(i.items))
	for _, item := range i.items {
		out = append(out, *item)
	}
	i.mu.RUnlock()
	sortItems(out)
	return out
}

// Select marks the entries named in names as checked and clears every other
// entry. It returns the selected display names in sidebar order, each once;
// names not in the index are ignored.
func (i *Index) Select(names []string) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	i.mu.Lock()
	for _, item := range i.items {
		_, item.Checked = wanted[item.Name]
	}
	i.mu.Unlock()

	var selected []string
	seen := make(map[string]struct{}, len(wanted))
	for _, item := range i.Items() {
		if _, dup := seen[item.Name]; item.Checked && !dup {
			seen[item.Name] = struct{}{}
			selected = append(selected, item.Name)
		}
	}
	return selected
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		la, lb := strings.ToLower(items[a].Name), strings.ToLower(items[b].Name)
		if la != lb {
			return la < lb
		}
		if items[a].Name != items[b].Name {
			return items[a].Name < items[b].Name
		}
		return items[a].title < items[b].title
	})
}
