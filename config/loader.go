// =============================================================================
// 📦 AgentQuorum 配置加载器
// =============================================================================
// 叠加顺序: 默认值 → YAML 文件 → 环境变量 → 验证器
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithValidator((*config.Config).Validate).
//	    Load()
//
// YAML 按已知字段严格解码，阈值名拼错会直接报错而不是静默使用默认值。
// 环境变量名为 <前缀>_<段>_<字段>，例如 AGENTQUORUM_COORDINATION_ACCEPT_THRESHOLD。
// =============================================================================
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix 环境变量默认前缀
const DefaultEnvPrefix = "AGENTQUORUM"

// LoadReport 记录一次加载实际用到的来源
type LoadReport struct {
	// File 成功读取的配置文件，未指定或不存在时为空
	File string
	// EnvKeys 生效的环境变量名，按字段声明顺序
	EnvKeys []string
}

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
	report     LoadReport
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{envPrefix: DefaultEnvPrefix}
}

// WithConfigPath 设置配置文件路径，文件不存在时沿用默认值
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器，按添加顺序执行
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Report 返回最近一次 Load 的来源记录
func (l *Loader) Report() LoadReport {
	return l.report
}

// Load 加载配置
func (l *Loader) Load() (*Config, error) {
	l.report = LoadReport{}
	cfg := DefaultConfig()

	if l.configPath != "" {
		found, err := decodeFile(l.configPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", l.configPath, err)
		}
		if found {
			l.report.File = l.configPath
		}
	}

	applied, err := applyEnv(cfg, l.envPrefix, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	l.report.EnvKeys = applied

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

// decodeFile 把 YAML 叠加到 cfg 上；文件不存在返回 (false, nil)，空文件视为无覆盖
func decodeFile(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return true, nil
}

// =============================================================================
// 🌱 环境变量
// =============================================================================

// envBinding 一个叶子字段与其环境变量名
type envBinding struct {
	key   string
	field reflect.Value
}

// envBindings 按 env 标签展开 v 的全部叶子字段
func envBindings(v reflect.Value, prefix string) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		if f := v.Field(i); f.Kind() == reflect.Struct {
			out = append(out, envBindings(f, key)...)
		} else {
			out = append(out, envBinding{key: key, field: f})
		}
	}
	return out
}

// applyEnv 用 lookup 找到的非空变量覆盖 cfg，返回生效的变量名；
// 所有解析错误合并返回，cfg 中已成功的字段保留覆盖后的值
func applyEnv(cfg *Config, prefix string, lookup func(string) (string, bool)) ([]string, error) {
	var (
		applied []string
		errs    []error
	)
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), prefix) {
		raw, ok := lookup(b.key)
		if !ok || raw == "" {
			continue
		}
		if err := assign(b.field, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", b.key, raw, err))
			continue
		}
		applied = append(applied, b.key)
	}
	return applied, errors.Join(errs...)
}

// assign 按字段的具体类型解析 raw
func assign(field reflect.Value, raw string) error {
	switch p := field.Addr().Interface().(type) {
	case *string:
		*p = raw
	case *time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*p = d
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*p = f
	case *bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*p = b
	case *[]string:
		// 逗号分隔，忽略空项
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		*p = items
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
