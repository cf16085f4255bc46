package plan

import (
	"fmt"
	"strconv"

	"squish/internal/classify"
	"squish/internal/config"
)

// kindStages is the builtin stage table. Format specific compressors come
// before generic deflate re-optimizers because the latter assume the layout
// the former leave behind.
type kindStages struct {
	kind   classify.Kind
	stages func(cfg *config.Config) []StageSpec
}

func builtinTable() []kindStages {
	return []kindStages{
		{classify.PNG, pngStages},
		{classify.JPEG, jpegStages},
		{classify.GIF, gifStages},
		{classify.BMP, bmpStages},
		{classify.ICO, icoStages},
		{classify.TIFF, tiffStages},
		{classify.WEBP, webpStages},
		{classify.PDF, pdfStages},
		{classify.Office, archiveStages(classify.Office)},
		{classify.EPUB, archiveStages(classify.EPUB)},
		{classify.APK, archiveStages(classify.APK)},
		{classify.ZIP, archiveStages(classify.ZIP)},
		{classify.GZIP, gzipStages},
		{classify.EXE, exeStages},
		{classify.ELF, elfStages},
		{classify.FLAC, flacStages},
		{classify.MP3, mp3Stages},
		{classify.OGG, oggStages},
		{classify.MP4, mp4Stages},
		{classify.MKV, mkvStages},
		{classify.SVG, svgStages},
		{classify.XML, minifyStages(classify.XML, "xml")},
		{classify.HTML, minifyStages(classify.HTML, "html")},
		{classify.JSON, minifyStages(classify.JSON, "json")},
	}
}

func stage(kind classify.Kind, name string, args ...string) StageSpec {
	return StageSpec{Kind: kind, Name: name, Template: MustTemplate(args...)}
}

func (s StageSpec) when(p Predicate) StageSpec {
	s.Applies = p
	return s
}

func (s StageSpec) exits(lo, hi int, extra ...int) StageSpec {
	s.ExitMin, s.ExitMax, s.ExitCodes = lo, hi, extra
	return s
}

func itoa(v int) string { return strconv.Itoa(v) }

func pngStages(cfg *config.Config) []StageSpec {
	level := cfg.Optimize.Level
	strip := !cfg.PreserveMetadata(string(classify.PNG))

	optipng := []string{"optipng", "-quiet", "-force", "-fix", "-o" + itoa(Scaled(level, 7))}
	oxipng := []string{"oxipng", "-q", "-o", itoa(Scaled(level, 6))}
	zopfli := []string{"zopflipng", "-y", fmt.Sprintf("--iterations=%d", Iterations(level))}
	ect := []string{"ect", "-" + itoa(Effort(level, 8)), "-quiet"}
	if strip {
		optipng = append(optipng, "-strip", "all")
		oxipng = append(oxipng, "--strip", "safe")
		ect = append(ect, "-strip")
	} else {
		zopfli = append(zopfli, "--keepchunks=tEXt,zTXt,iTXt,eXIf,iCCP")
	}
	optipng = append(optipng, "-out", PlaceholderTmpOutput, PlaceholderInput)
	oxipng = append(oxipng, "--out", PlaceholderTmpOutput, PlaceholderInput)
	zopfli = append(zopfli, PlaceholderInput, PlaceholderTmpOutput)
	ect = append(ect, PlaceholderTmpInput)

	return []StageSpec{
		stage(classify.PNG, "pngquant", "pngquant", "--force", "--skip-if-larger",
			"--speed", itoa(max(1, 11-level)), fmt.Sprintf("--quality=%d-100", Quality(level)),
			"--output", PlaceholderTmpOutput, PlaceholderInput).
			exits(0, 0, 98, 99).when(LossyAllowed),
		stage(classify.PNG, "optipng", optipng...).when(NotAnimated(classify.PNG)),
		stage(classify.PNG, "oxipng", oxipng...),
		stage(classify.PNG, "advpng", "advpng", "-z", "-"+itoa(Effort(level, 3)), "-q", PlaceholderTmpInput).
			when(NotAnimated(classify.PNG)),
		stage(classify.PNG, "zopflipng", zopfli...),
		stage(classify.PNG, "ect", ect...),
	}
}

func jpegStages(cfg *config.Config) []StageSpec {
	level := cfg.Optimize.Level
	preserve := cfg.PreserveMetadata(string(classify.JPEG))

	jpegtran := []string{"jpegtran", "-optimize"}
	if cfg.Tuning.JPEGProgressive {
		jpegtran = append(jpegtran, "-progressive")
	}
	copyMode := "none"
	if preserve {
		copyMode = "all"
	}
	jpegtran = append(jpegtran, "-copy", copyMode, "-outfile", PlaceholderTmpOutput, PlaceholderInput)

	ect := []string{"ect", "-" + itoa(Effort(level, 8)), "-quiet"}
	if !preserve {
		ect = append(ect, "-strip")
	}
	if cfg.Tuning.JPEGProgressive {
		ect = append(ect, "--allfilters")
	}
	ect = append(ect, PlaceholderTmpInput)

	return []StageSpec{
		stage(classify.JPEG, "jpegoptim-lossy", "jpegoptim", "--quiet", "--force",
			fmt.Sprintf("--max=%d", Quality(level)), PlaceholderTmpInput).when(LossyAllowed),
		stage(classify.JPEG, "jpegtran", jpegtran...),
		stage(classify.JPEG, "jpegoptim-strip", "jpegoptim", "--quiet", "--strip-all", PlaceholderTmpInput).
			when(StripEXIF(classify.JPEG)),
		stage(classify.JPEG, "ect", ect...),
	}
}

func gifStages(cfg *config.Config) []StageSpec {
	level := cfg.Optimize.Level
	opt := "-O" + itoa(Effort(level, 2))
	return []StageSpec{
		stage(classify.GIF, "gifsicle", "gifsicle", opt, "--no-warnings", "-o", PlaceholderTmpOutput, PlaceholderInput),
		stage(classify.GIF, "gifsicle-lossy", "gifsicle", opt, "--no-warnings",
			fmt.Sprintf("--lossy=%d", 20+level*10), "-o", PlaceholderTmpOutput, PlaceholderInput).
			when(LossyAllowed),
	}
}

func bmpStages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.BMP, "magick-rle", "magick", PlaceholderInput, "-compress", "RLE", "BMP3:"+PlaceholderOutput),
	}
}

func icoStages(cfg *config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.ICO, "leanify", "leanify", "-q", "-i", itoa(Iterations(cfg.Optimize.Level)), PlaceholderTmpInput),
	}
}

func tiffStages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.TIFF, "magick-zip", "magick", PlaceholderInput, "-compress", "Zip", "TIFF:"+PlaceholderOutput),
	}
}

func webpStages(cfg *config.Config) []StageSpec {
	args := []string{"cwebp", "-quiet", "-lossless", "-z", itoa(Scaled(cfg.Optimize.Level, 9))}
	if !cfg.PreserveMetadata(string(classify.WEBP)) {
		args = append(args, "-metadata", "none")
	} else {
		args = append(args, "-metadata", "all")
	}
	args = append(args, PlaceholderInput, "-o", PlaceholderTmpOutput)
	return []StageSpec{
		stage(classify.WEBP, "cwebp", args...).when(NotAnimated(classify.WEBP)),
	}
}

func pdfStages(cfg *config.Config) []StageSpec {
	profile := cfg.Tuning.PDFProfile
	if profile == "" {
		profile = "ebook"
	}
	return []StageSpec{
		stage(classify.PDF, "qpdf", "qpdf", "--object-streams=generate", "--compress-streams=y",
			"--recompress-flate", fmt.Sprintf("--compression-level=%d", Effort(cfg.Optimize.Level, 8)),
			PlaceholderInput, PlaceholderTmpOutput).exits(0, 0, 3),
		stage(classify.PDF, "ghostscript", "gs", "-q", "-dBATCH", "-dNOPAUSE", "-dSAFER", "-sDEVICE=pdfwrite",
			"-dPDFSETTINGS=/"+profile, "-sOutputFile="+PlaceholderTmpOutput, PlaceholderInput).
			when(LossyAllowed),
	}
}

func archiveStages(kind classify.Kind) func(cfg *config.Config) []StageSpec {
	return func(cfg *config.Config) []StageSpec {
		level := cfg.Optimize.Level
		return []StageSpec{
			stage(kind, "leanify", "leanify", "-q", "-i", itoa(Iterations(level)), PlaceholderTmpInput),
			stage(kind, "advzip", "advzip", "-z", "-"+itoa(Effort(level, 3)), "-q", PlaceholderTmpInput),
		}
	}
}

func gzipStages(cfg *config.Config) []StageSpec {
	level := cfg.Optimize.Level
	return []StageSpec{
		stage(classify.GZIP, "advdef", "advdef", "-z", "-"+itoa(Effort(level, 3)), "-q", PlaceholderTmpInput),
		stage(classify.GZIP, "ect", "ect", "-"+itoa(Effort(level, 8)), "-quiet", "-gzip", PlaceholderTmpInput),
	}
}

func exeStages(cfg *config.Config) []StageSpec {
	args := []string{"upx", "-q", "--best"}
	if cfg.Optimize.Level >= 7 {
		args = append(args, "--lzma")
	}
	args = append(args, "-o", PlaceholderOutput, PlaceholderInput)
	return []StageSpec{
		stage(classify.EXE, "upx", args...).exits(0, 0, 2).when(All(UPXEnabled, NotSelfExtracting)),
	}
}

func elfStages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.ELF, "strip", "strip", "--strip-unneeded", "-o", PlaceholderTmpOutput, PlaceholderInput),
	}
}

func flacStages(cfg *config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.FLAC, "flac", "flac", "-s", "-f", "-"+itoa(Scaled(cfg.Optimize.Level, 8)),
			"-o", PlaceholderOutput, PlaceholderInput),
	}
}

func mp3Stages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.MP3, "mp3packer", "mp3packer", "-s", "-z", PlaceholderInput, PlaceholderTmpOutput),
	}
}

func oggStages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.OGG, "rehuff", "rehuff", PlaceholderInput, PlaceholderTmpOutput),
	}
}

func mp4Stages(cfg *config.Config) []StageSpec {
	args := []string{"ffmpeg", "-v", "quiet", "-y", "-i", PlaceholderInput, "-map", "0", "-c", "copy"}
	if !cfg.PreserveMetadata(string(classify.MP4)) {
		args = append(args, "-map_metadata", "-1")
	}
	args = append(args, "-movflags", "+faststart", "-f", "mp4", PlaceholderTmpOutput)
	return []StageSpec{stage(classify.MP4, "ffmpeg-remux", args...)}
}

func mkvStages(*config.Config) []StageSpec {
	return []StageSpec{
		stage(classify.MKV, "mkclean", "mkclean", "--quiet", "--optimize", PlaceholderInput, PlaceholderTmpOutput),
	}
}

func svgStages(cfg *config.Config) []StageSpec {
	args := []string{"scour", "-q", "-i", PlaceholderInput, "-o", PlaceholderOutput,
		"--enable-viewboxing", "--enable-id-stripping", "--shorten-ids", "--indent=none"}
	if !cfg.PreserveMetadata(string(classify.SVG)) {
		args = append(args, "--remove-metadata", "--enable-comment-stripping")
	}
	return []StageSpec{stage(classify.SVG, "scour", args...)}
}

func minifyStages(kind classify.Kind, mediaType string) func(cfg *config.Config) []StageSpec {
	return func(*config.Config) []StageSpec {
		return []StageSpec{
			stage(kind, "minify", "minify", "--type="+mediaType, "-o", PlaceholderOutput, PlaceholderInput),
		}
	}
}
