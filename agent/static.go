package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/agentquorum/types"
)

// StaticSpec 静态 Agent 定义（YAML 池文件中的一项）
type StaticSpec struct {
	types.AgentProfile `yaml:",inline"`

	// Response 固定输出内容，支持 {{query}} 占位符
	Response string `yaml:"response"`
	// Confidence 输出置信度，缺省使用 ConfidenceHint
	Confidence float64 `yaml:"confidence"`
	// Latency 模拟处理耗时
	Latency time.Duration `yaml:"latency"`
	// Fail 为 true 时每次调用都失败
	Fail bool `yaml:"fail"`
}

// StaticAgent 规则引擎式 Agent：返回预先配置的内容
type StaticAgent struct {
	spec StaticSpec
}

// NewStaticAgent 创建静态 Agent
func NewStaticAgent(spec StaticSpec) *StaticAgent {
	return &StaticAgent{spec: spec}
}

// Profile returns the agent descriptor.
func (s *StaticAgent) Profile() types.AgentProfile { return s.spec.AgentProfile }

// Execute 返回配置的内容；Latency 期间响应 ctx 取消
func (s *StaticAgent) Execute(ctx context.Context, query string, _ *types.Context) (*types.AgentResponse, error) {
	if s.spec.Latency > 0 {
		timer := time.NewTimer(s.spec.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if s.spec.Fail {
		return nil, fmt.Errorf("static agent %s configured to fail", s.spec.ID)
	}

	confidence := s.spec.Confidence
	if confidence == 0 {
		confidence = s.spec.ConfidenceHint
	}

	return &types.AgentResponse{
		AgentID:    s.spec.ID,
		Content:    strings.ReplaceAll(s.spec.Response, "{{query}}", query),
		Confidence: types.ClampConfidence(confidence),
		Timestamp:  time.Now(),
	}, nil
}

// PoolFile Agent 池文件格式
type PoolFile struct {
	Agents []StaticSpec `yaml:"agents"`
}

// LoadStaticPool 从 YAML 文件加载静态 Agent 池
func LoadStaticPool(path string) ([]Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent pool: %w", err)
	}
	return ParseStaticPool(data)
}

// ParseStaticPool 解析 YAML 格式的 Agent 池
func ParseStaticPool(data []byte) ([]Agent, error) {
	var pf PoolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse agent pool: %w", err)
	}

	seen := make(map[string]struct{}, len(pf.Agents))
	agents := make([]Agent, 0, len(pf.Agents))
	var errs []error
	for i, spec := range pf.Agents {
		if spec.ID == "" {
			errs = append(errs, fmt.Errorf("agent #%d: id is required", i))
			continue
		}
		if _, dup := seen[spec.ID]; dup {
			errs = append(errs, fmt.Errorf("agent %s: duplicate id", spec.ID))
			continue
		}
		seen[spec.ID] = struct{}{}
		if spec.Tier <= 0 {
			spec.Tier = 1
		}
		agents = append(agents, NewStaticAgent(spec))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return agents, nil
}
