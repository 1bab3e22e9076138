package render

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// fontPaths is tried in order; report titles carry CJK so the CJK-capable
// fonts come first. basicfont closes the chain when nothing loads.
var fontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"C:\\Windows\\Fonts\\msyh.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

type faceSet struct {
	title font.Face
	body  font.Face
	small font.Face
}

var (
	facesOnce sync.Once
	faces     faceSet
)

// loadFaces resolves the three text sizes once per process.
func loadFaces() faceSet {
	facesOnce.Do(func() {
		faces = faceSet{
			title: newFace(22),
			body:  newFace(15),
			small: newFace(12),
		}
	})
	return faces
}

func newFace(size float64) font.Face {
	for _, path := range fontPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var ft *opentype.Font
		if strings.HasSuffix(strings.ToLower(path), ".ttc") {
			coll, err := opentype.ParseCollection(raw)
			if err != nil {
				continue
			}
			ft, err = coll.Font(0)
			if err != nil {
				continue
			}
		} else {
			ft, err = opentype.Parse(raw)
			if err != nil {
				continue
			}
		}
		face, err := opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}
