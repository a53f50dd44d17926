package utils

import (
	"context"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

// CollectCategoryIDs returns rootID plus every descendant category id,
// breadth-first. Catalog filtering matches products against the whole
// subtree so "steel" includes "steel/brackets".
func CollectCategoryIDs(ctx context.Context, rootID uint) ([]uint, error) {
	var result []uint
	result = append(result, rootID)

	var queue = []uint{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		err := db.DB.WithContext(ctx).Where("parent_id = ?", current).Find(&children).Error
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}
