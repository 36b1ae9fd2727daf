package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "jpeg", NormalizeExt("jpeg"))
	assert.Equal(t, "docx", NormalizeExt(".docx"))
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".pdf"))
	assert.Equal(t, DOCX, MapExtToFormat("docx"))
	assert.Equal(t, IMAGE, MapExtToFormat(".JPG"))
	assert.Equal(t, IMAGE, MapExtToFormat("tiff"))
	assert.Equal(t, IMAGE, MapExtToFormat(".heic"))
	assert.Equal(t, Format(""), MapExtToFormat(".txt"))
	assert.Equal(t, Format(""), MapExtToFormat(""))
}

func TestIsAllowedExt(t *testing.T) {
	for _, ext := range AllowedExtList() {
		assert.True(t, IsAllowedExt(ext), ext)
	}
	assert.False(t, IsAllowedExt(".exe"))
	assert.False(t, IsAllowedExt("svg"))
}
