package workflow

// DefaultPreprocess is the starting preprocessing script emitted with a
// fresh configuration. The pipeline host runs it before workflow launch to
// adjust parameters and stage the input samplesheet.
const DefaultPreprocess = `#!/usr/bin/env python3

from cirro.helpers.preprocess_dataset import PreprocessDataset


def main():
    ds = PreprocessDataset.from_running()

    # Log the parameters and input files available to the workflow
    ds.logger.info(ds.params)
    ds.logger.info(ds.files)


if __name__ == "__main__":
    main()
`
