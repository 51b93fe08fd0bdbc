// Functions for dealing with the external HYCOM and ESMF binaries.

package rtofs

import (
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Commands used to launch the external tools. On each invocation the
// command is looked up in the system path.
var (
	Archv2NCDFCommand     = "archv2ncdf"
	Scrip2UnstructCommand = "ESMF_Scrip2Unstruct"
	OGCMCommand           = "OGCM_DL.a"
)

// Archv2NCDF runs the HYCOM-tools converter turning an archive pair into a
// NetCDF file. The tool reads its control input on stdin; archvFn names the
// pair without the .a/.b extension.
func Archv2NCDF(archvFn, destFn string, control io.Reader) error {
	cmd := exec.Command(Archv2NCDFCommand, archvFn, destFn)
	cmd.Stdin = control
	return runTool(cmd)
}

// Scrip2Unstruct runs the ESMF converter from a SCRIP grid file to an
// unstructured ESMF mesh file. dualFlag selects the dual mesh (1) or the
// original center/corner mesh (0).
func Scrip2Unstruct(scripFn, destFn string, dualFlag int) error {
	cmd := exec.Command(Scrip2UnstructCommand, scripFn, destFn, strconv.Itoa(dualFlag))
	return runTool(cmd)
}

// OGCMDownload runs the OGCM boundary-condition extraction binary with the
// given control file.
func OGCMDownload(controlFn string) error {
	cmd := exec.Command(OGCMCommand, controlFn)
	return runTool(cmd)
}

// runTool starts a tool with its stderr piped through ours and waits for
// completion.
func runTool(cmd *exec.Cmd) error {
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	go func() { io.Copy(os.Stderr, stderr) }()

	return cmd.Wait()
}
