package selfupdate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// UpdateInput selects the release to install. An empty TargetVersion
// means the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is reported once per stage: check, download, verify,
// extract, apply and done.
type UpdateProgress struct {
	Stage   string
	Message string
}

// Update downloads, verifies and installs a release over the running
// executable, reporting each stage to progress.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	if canonical(input.CurrentVersion) == "" {
		return ErrDevBuild
	}
	report := func(stage, format string, args ...any) {
		if progress != nil {
			progress(UpdateProgress{Stage: stage, Message: fmt.Sprintf(format, args...)})
		}
	}

	tag := input.TargetVersion
	if tag == "" {
		report("check", "Checking for latest version...")
		res, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !res.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = res.LatestVersion
	}

	asset, err := assetFor(c.goos, c.goarch)
	if err != nil {
		return err
	}

	report("download", "Downloading %s...", tag)
	archive, err := c.fetch(ctx, c.downloadURL(tag, asset))
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report("verify", "Verifying checksum...")
	raw, err := c.fetch(ctx, c.downloadURL(tag, checksumsFile))
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	sums, err := readChecksums(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse checksums: %w", err)
	}
	if err := sums.verify(asset, archive); err != nil {
		return err
	}

	report("extract", "Extracting binary...")
	bin, err := unpack(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report("apply", "Applying update...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := replaceExecutable(target, bin); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	report("done", "Updated to %s", tag)
	return nil
}
