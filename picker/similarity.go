package picker

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"strings"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"
)

// imageInfo is what annotate learns about one accepted file
type imageInfo struct {
	width, height int
	hash          *goimagehash.ImageHash
}

// annotate fills Remarks with pixel dimensions and near-duplicate hints.
// Files that fail to decode are left without remarks.
func annotate(ctx context.Context, files []PendingFile, threshold int) {
	if len(files) == 0 {
		return
	}

	infos := make([]*imageInfo, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := describeImage(files[i].Path, threshold >= 0)
			if err == nil {
				infos[i] = info
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return
	}

	for i := range files {
		if infos[i] == nil {
			continue
		}
		remarks := []string{fmt.Sprintf("%dx%d", infos[i].width, infos[i].height)}
		if match := firstSimilar(infos, i, threshold); match >= 0 {
			remarks = append(remarks, "similar to "+files[match].Name)
		}
		files[i].Remarks = strings.Join(remarks, ", ")
	}
}

func describeImage(path string, withHash bool) (*imageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	info := &imageInfo{width: bounds.Dx(), height: bounds.Dy()}
	if withHash {
		hash, err := goimagehash.PerceptionHash(img)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate perceptual hash: %w", err)
		}
		info.hash = hash
	}
	return info, nil
}

// firstSimilar returns the index of the earliest file before i whose hash is
// within threshold of file i, or -1
func firstSimilar(infos []*imageInfo, i, threshold int) int {
	if threshold < 0 || infos[i].hash == nil {
		return -1
	}
	for j := 0; j < i; j++ {
		if infos[j] == nil || infos[j].hash == nil {
			continue
		}
		distance, err := infos[i].hash.Distance(infos[j].hash)
		if err != nil {
			continue
		}
		if distance <= threshold {
			return j
		}
	}
	return -1
}
