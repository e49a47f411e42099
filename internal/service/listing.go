package service

import (
	"fmt"
	"strings"

	"github.com/xxxsen/repochat/internal/model"
)

const listingMetaPathCap = 100

// BuildFileListing renders the file-list fragment content, a markdown
// inventory of every file path the repository contains.
func BuildFileListing(paths []string) string {
	var sb strings.Builder
	sb.WriteString("## Repository File Structure\n\nThis repository contains the following files:\n\n")
	for _, path := range paths {
		sb.WriteString("- ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n**Total files: %d**", len(paths)))
	return sb.String()
}

// BuildListingMeta returns the metadata for the file-list fragment.
// The path list is capped to keep the metadata column bounded.
func BuildListingMeta(paths []string) model.ListingMeta {
	capped := paths
	if len(capped) > listingMetaPathCap {
		capped = capped[:listingMetaPathCap]
	}
	return model.ListingMeta{
		Type:       model.MetaTypeFileList,
		TotalFiles: len(paths),
		FilePaths:  capped,
	}
}
