package workflow

import (
	"github.com/shouni/go-ugc-kit/pkg/publisher"
	"github.com/shouni/go-ugc-kit/pkg/runner"
)

// BuildConceptRunner は、コンセプト生成を担当する Runner を作成します。
func (m *Manager) BuildConceptRunner() (ConceptRunner, error) {
	return runner.NewConceptRunner(m.builder, m.generator), nil
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	return runner.NewDefaultPublisherRunner(publisher.NewConceptPublisher(m.writer)), nil
}
