package godss

import "context"

// Convenience functions opening a DSS handle around one operation, in the
// manner callers usually want for scripts. Each opens, works, and closes.

// ReadCatalog reads the catalog of one DSS resource.
func ReadCatalog(src string, cfg Config) (*Catalog, error) {
	d, err := OpenDSS(src, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.ReadCatalog(false)
}

// ReadRTS reads the single regular timeseries a path addresses in one DSS
// resource.
func ReadRTS(src string, path DatasetPath, cfg Config) (*RegularTimeseries, error) {
	d, err := OpenDSS(src, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.ReadRTS(path)
}

// ReadMultipleRTS reads every dataset a possibly wildcarded path expands to
// in one DSS resource, materialized in sorted path order.
func ReadMultipleRTS(src string, path DatasetPath, cfg Config) ([]*RegularTimeseries, error) {
	d, err := OpenDSS(src, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out []*RegularTimeseries
	for rts, err := range d.ReadMultipleRTS(path, true) {
		if err != nil {
			return nil, err
		}
		out = append(out, rts)
	}
	return out, nil
}

// CopyRTS copies one dataset between two DSS resources. Both paths must be
// concrete; a wildcard on either side fails rather than fanning out.
func CopyRTS(src, dst string, srcPath, dstPath DatasetPath, cfg Config) error {
	if srcPath.HasWildcard() || dstPath.HasWildcard() {
		return newWildcardError("cannot copy paths with wildcards",
			srcPath.String()+" -> "+dstPath.String())
	}
	srcDSS, err := OpenDSS(src, cfg)
	if err != nil {
		return err
	}
	defer srcDSS.Close()
	dstDSS, err := OpenDSS(dst, cfg)
	if err != nil {
		return err
	}
	defer dstDSS.Close()

	rts, err := srcDSS.ReadRTS(srcPath)
	if err != nil {
		return err
	}
	return dstDSS.WriteRTS(dstPath, rts)
}

// PathPair names one dataset in a source resource and its destination name.
type PathPair struct {
	Src DatasetPath
	Dst DatasetPath
}

// CopyMultipleRTS copies datasets between two DSS resources, opening each
// resource once. Every pair must be concrete.
func CopyMultipleRTS(src, dst string, pairs []PathPair, cfg Config) error {
	srcDSS, err := OpenDSS(src, cfg)
	if err != nil {
		return err
	}
	defer srcDSS.Close()
	dstDSS, err := OpenDSS(dst, cfg)
	if err != nil {
		return err
	}
	defer dstDSS.Close()

	for _, pair := range pairs {
		if pair.Src.HasWildcard() || pair.Dst.HasWildcard() {
			return newWildcardError("cannot copy paths with wildcards",
				pair.Src.String()+" -> "+pair.Dst.String())
		}
		rts, err := srcDSS.ReadRTS(pair.Src)
		if err != nil {
			return err
		}
		if err := dstDSS.WriteRTS(pair.Dst, rts); err != nil {
			return err
		}
	}
	return nil
}

// ExportRTS expands a pattern against one DSS resource and exports every
// matched dataset to a store, one plaintext table per distinct interval.
// Returns the written object keys; an empty expansion fails with
// ErrEmptyResult.
func ExportRTS(ctx context.Context, src string, path DatasetPath, store ObjectStore, prefix string, cfg Config) ([]string, error) {
	d, err := OpenDSS(src, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	return NewExporter(store, prefix).Export(ctx, d.ReadMultipleRTS(path, true))
}
