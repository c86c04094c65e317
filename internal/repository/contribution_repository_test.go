package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdantlabs/herbarium/internal/domain"
)

func TestBuildContributionListQueryNoFilter(t *testing.T) {
	query, args := buildContributionListQuery(ContributionFilter{}, 20, 0)

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{20, 0}, args)
}

func TestBuildContributionListQueryAllFilters(t *testing.T) {
	filter := ContributionFilter{
		Type:   domain.ContributionTypeUpdate,
		Status: domain.ContributionStatusPending,
		Search: "rose",
	}

	query, args := buildContributionListQuery(filter, 10, 30)

	assert.Contains(t, query, "type = $1")
	assert.Contains(t, query, "status = $2")
	assert.Contains(t, query, "plant->>'scientific_name' ILIKE $3")
	assert.Contains(t, query, "jsonb_array_elements_text")
	assert.Contains(t, query, "LIMIT $4 OFFSET $5")
	assert.Equal(t, []any{domain.ContributionTypeUpdate, domain.ContributionStatusPending, "%rose%", 10, 30}, args)
}

func TestLikePatternEscapesMetacharacters(t *testing.T) {
	pattern := likePattern(`50%_off\now`)

	assert.True(t, strings.HasPrefix(pattern, "%"))
	assert.True(t, strings.HasSuffix(pattern, "%"))
	assert.Contains(t, pattern, `\%`)
	assert.Contains(t, pattern, `\_`)
	assert.Contains(t, pattern, `\\`)
}
