package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawchat-backend/corpus/corpustest"
	"lawchat-backend/llm"
	"lawchat-backend/models"
)

// scriptedReasoner answers each classifier prompt by its kind
type scriptedReasoner struct {
	domain, specific, numbers, chapters string
	err                                 error
	prompts                             []string
}

func (s *scriptedReasoner) Generate(_ context.Context, messages []llm.Message, _ float32) (string, error) {
	prompt := messages[len(messages)-1].Text
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	switch {
	case strings.Contains(prompt, "是否與"):
		return s.domain, nil
	case strings.Contains(prompt, "特定條號"):
		return s.specific, nil
	case strings.Contains(prompt, "大寫字母 N"):
		return s.numbers, nil
	case strings.Contains(prompt, "的目錄"):
		return s.chapters, nil
	}
	return "", errors.New("unexpected prompt")
}

func (s *scriptedReasoner) count(marker string) int {
	n := 0
	for _, p := range s.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

type fakeEmbedder struct {
	vec   []float32
	calls int
}

func (f *fakeEmbedder) Embed(context.Context, string, llm.EmbedRole, string) ([]float32, error) {
	f.calls++
	return f.vec, nil
}

type lawShelf map[string]*models.Law

func (s lawShelf) Law(_ context.Context, name string) (*models.Law, error) {
	if law, ok := s[name]; ok {
		return law, nil
	}
	return nil, models.ErrLawNotFound
}

func shelf() lawShelf {
	return lawShelf{
		"民法總則施行法": corpustest.GeneralPartCompanion(),
		"民法債編施行法":  corpustest.ObligationsCompanion(),
	}
}

func titles(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title())
	}
	return out
}

func TestRetrieveDirectArticle(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "是", specific: "是", numbers: "N83"}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(emb), WithLawLookup(shelf()))

	res, err := engine.Retrieve(context.Background(), "民法第83條是什麼", corpustest.CivilCode())
	require.NoError(t, err)

	assert.Equal(t, ModeDirect, res.Mode)
	assert.Equal(t, []string{"民法 第 83 條"}, titles(res.Articles))
	assert.Equal(t, []string{"83"}, res.References.Numbers())
	assert.Equal(t, 0, reasoner.count("的目錄"))
	assert.Zero(t, emb.calls)
}

func TestRetrieveOutOfDomainShortCircuits(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "否"}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(emb))

	res, err := engine.Retrieve(context.Background(), "今天天氣如何", corpustest.CivilCode())
	require.NoError(t, err)

	assert.True(t, res.OutOfDomain())
	assert.Empty(t, res.Articles)
	assert.Len(t, reasoner.prompts, 1)
	assert.Equal(t, 0, reasoner.count("的目錄"))
	assert.Zero(t, emb.calls)
}

func TestRetrieveUnreadableDomainAnswerFailsClosed(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "I cannot tell"}
	engine := NewEngine(WithReasoner(reasoner))

	res, err := engine.Retrieve(context.Background(), "?", corpustest.CivilCode())
	require.NoError(t, err)
	assert.True(t, res.OutOfDomain())
}

func TestRetrieveDirectWithoutNumbersFailsClosed(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "是", specific: "是", numbers: "我不知道"}
	engine := NewEngine(WithReasoner(reasoner))

	res, err := engine.Retrieve(context.Background(), "某條是什麼", corpustest.CivilCode())
	require.NoError(t, err)
	assert.True(t, res.OutOfDomain())
}

func TestRetrieveHierarchyWithCompanions(t *testing.T) {
	reasoner := &scriptedReasoner{
		domain:   "是",
		specific: "否",
		chapters: "C第一編 總則,第二章 人\nC第二編 債",
	}
	engine := NewEngine(WithReasoner(reasoner), WithLawLookup(shelf()))

	res, err := engine.Retrieve(context.Background(), "契約何時成立", corpustest.CivilCode())
	require.NoError(t, err)

	assert.Equal(t, ModeHierarchy, res.Mode)
	assert.Equal(t, []string{
		"民法 第 6 條",
		"民法 第 25 條",
		"民法 第 153 條",
		"民法 第 183 條",
		"民法總則施行法 第 1 條",
		"民法債編施行法 第 1 條",
		"民法債編施行法 第 2 條",
	}, titles(res.Articles))
	assert.Equal(t, 1, reasoner.count("的目錄"))
	assert.Contains(t, reasoner.prompts[2], "第 二 編 債")
}

func TestRetrieveHierarchyMissingCompanionIsSkipped(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "是", specific: "否", chapters: "C第三編 物權"}
	engine := NewEngine(WithReasoner(reasoner), WithLawLookup(shelf()))

	res, err := engine.Retrieve(context.Background(), "物權可以自創嗎", corpustest.CivilCode())
	require.NoError(t, err)
	assert.Equal(t, []string{"民法 第 757 條"}, titles(res.Articles))
}

func TestRetrieveHierarchyUnparsableFailsClosed(t *testing.T) {
	reasoner := &scriptedReasoner{domain: "是", specific: "否", chapters: "都有可能"}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(emb))

	res, err := engine.Retrieve(context.Background(), "q", corpustest.CivilCode())
	require.NoError(t, err)
	assert.True(t, res.OutOfDomain())
	assert.Zero(t, emb.calls)
}

func TestRetrieveHierarchyNoMatchFallsBackToSemantic(t *testing.T) {
	law := corpustest.CivilCode()
	law.Articles[2].Embedding = []float32{1, 0}

	reasoner := &scriptedReasoner{domain: "是", specific: "否", chapters: "C第九編 不存在"}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(emb))

	res, err := engine.Retrieve(context.Background(), "q", law)
	require.NoError(t, err)
	assert.Equal(t, ModeSemantic, res.Mode)
	assert.Equal(t, []string{"民法 第 1 條"}, titles(res.Articles))
	assert.Equal(t, 1, emb.calls)
}

func TestRetrieveSemanticWhenHierarchyDisabled(t *testing.T) {
	law := corpustest.CivilCode()
	law.Articles[2].Embedding = []float32{0.9, 0.1} // 第 1 條
	law.Articles[3].Embedding = []float32{0, 1}     // 第 2 條
	law.Articles[6].Embedding = []float32{1, 0}     // 第 6 條
	law.Articles[14].Embedding = []float32{1, 0}    // 第 85 條, removed

	cfg := DefaultConfig()
	cfg.HierarchyEnabled = false
	reasoner := &scriptedReasoner{}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(emb), WithConfig(cfg))

	res, err := engine.Retrieve(context.Background(), "權利能力", law)
	require.NoError(t, err)
	assert.Equal(t, ModeSemantic, res.Mode)
	assert.Equal(t, []string{"民法 第 6 條", "民法 第 1 條"}, titles(res.Articles))
	assert.Len(t, res.Scores, 2)
	assert.Empty(t, reasoner.prompts)
}

func TestRetrieveUnstructuredLawUsesSemantic(t *testing.T) {
	law := corpustest.ObligationsCompanion()
	law.Articles[1].Embedding = []float32{1, 0}

	reasoner := &scriptedReasoner{}
	engine := NewEngine(WithReasoner(reasoner), WithEmbedder(&fakeEmbedder{vec: []float32{1, 0}}))

	res, err := engine.Retrieve(context.Background(), "時效", law)
	require.NoError(t, err)
	assert.Equal(t, []string{"民法債編施行法 第 2 條"}, titles(res.Articles))
	assert.Empty(t, reasoner.prompts)
}

func TestRetrieveUpstreamErrorPropagates(t *testing.T) {
	boom := errors.New("retry timeout")
	engine := NewEngine(WithReasoner(&scriptedReasoner{err: boom}))

	_, err := engine.Retrieve(context.Background(), "q", corpustest.CivilCode())
	assert.ErrorIs(t, err, boom)
}

func TestCompanionName(t *testing.T) {
	c := DefaultCompanionConfig()
	assert.Equal(t, "民法債編施行法", c.Name("民法", "債"))
	assert.Equal(t, "民法總則施行法", c.Name("民法", "總則"))
	assert.Equal(t, "民法總則施行法", c.Name("民法", ""))
	assert.Equal(t, "", CompanionConfig{}.Name("民法", "債"))
}
