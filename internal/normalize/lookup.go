package normalize

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Lookup 门店与 workroom 的对照表以及名称修正表（只读）
type Lookup struct {
	// Stores 门店号 -> workroom 名称
	Stores map[string]string `toml:"stores"`
	// NameFixups 已知被截断或拼错的名称 -> 正确名称
	NameFixups map[string]string `toml:"name_fixups"`
}

// DefaultLookup 内置对照表
func DefaultLookup() *Lookup {
	return &Lookup{
		Stores: map[string]string{},
		NameFixups: map[string]string{
			"Panama Cit": "Panama City",
		},
	}
}

// LoadLookup 从 TOML 文件加载对照表；文件中未出现的名称修正沿用内置值
func LoadLookup(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup file: %w", err)
	}

	var file Lookup
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lookup file: %w", err)
	}

	lookup := DefaultLookup()
	for store, name := range file.Stores {
		lookup.Stores[NormalizeStore(store)] = strings.TrimSpace(name)
	}
	for from, to := range file.NameFixups {
		lookup.NameFixups[strings.TrimSpace(from)] = strings.TrimSpace(to)
	}
	return lookup, nil
}

// WorkroomForStore 按门店号查找 workroom 名称
func (l *Lookup) WorkroomForStore(store string) (string, bool) {
	if l == nil || store == "" {
		return "", false
	}
	name, ok := l.Stores[store]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// FixName 应用名称修正表
func (l *Lookup) FixName(name string) string {
	if l == nil {
		return name
	}
	if fixed, ok := l.NameFixups[name]; ok {
		return fixed
	}
	return name
}

// NormalizeStore 去掉门店号的 # 前缀与 .0 后缀
func NormalizeStore(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "#"))
	s = strings.TrimSuffix(s, ".0")
	return s
}
