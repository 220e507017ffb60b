package engine

import (
	"path/filepath"
	"strings"
)

// DefaultSavePath derives the proposed output path for a source layer:
// the save subdirectory next to the source file, the source base name
// with the save suffix appended, and the source extension unless a
// format override is configured.
//
// /data/bld.shp becomes /data/zhuhai_bnu_all_point/bld_point.shp with
// the default layout.
func (e *Engine) DefaultSavePath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), ext)

	if e.saveFormat != "" {
		ext = "." + strings.TrimPrefix(e.saveFormat, ".")
	}

	return filepath.Join(dir, e.saveSubdir, base+e.saveSuffix+ext)
}
