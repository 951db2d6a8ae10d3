package ui

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opensolutionsgroup/ddi/internal/config"
	"github.com/opensolutionsgroup/ddi/internal/device"
	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/imaging"
	"github.com/opensolutionsgroup/ddi/internal/logger"
	"github.com/opensolutionsgroup/ddi/internal/remote"
)

// flowAction is what a flow asks the app to do next. Exactly one
// field is set; a zero action means the flow is finished.
type flowAction struct {
	dialog    dialog
	overlay   overlayModel
	operation *imaging.Operation
	done      bool
}

func showDialog(d dialog) flowAction      { return flowAction{dialog: d} }
func showOverlay(o overlayModel) flowAction { return flowAction{overlay: o} }
func flowDone() flowAction                { return flowAction{done: true} }

// flow is a user journey through a sequence of dialogs and
// operations. advance receives the result of whatever the previous
// action produced: the closed dialog's result, or {yes: success} after
// an operation the flow started.
type flow interface {
	title() string
	advance(result *dialogResult) flowAction
}

// deviceRefresher is implemented by flows whose current dialog is a
// device menu, so hotplug events can rebuild it in place.
type deviceRefresher interface {
	refreshDevices() (dialog, bool)
}

// listDevices wraps device.List with logging; enumeration failures
// surface as an empty menu, not a crash.
func listDevices(log *logger.Logger) []device.Device {
	devices, err := device.List()
	if err != nil {
		log.Error("device enumeration failed: %v", err)
		return nil
	}
	log.Info("found %d device(s)", len(devices))
	return devices
}

func deviceMenu(title string, devices []device.Device) *menuDialog {
	items := make([]string, len(devices))
	for i, d := range devices {
		items[i] = d.String()
	}
	return newMenu(title, items)
}

// endpointKind says where an image lives or goes: the local image
// directory, a host reached over ssh, or an NFS export mounted for the
// duration of the flow.
type endpointKind int

const (
	endpointLocal endpointKind = iota
	endpointSSH
	endpointNFS
)

// nfsMountPoint is the temporary mount used while a flow reads or
// writes an NFS export.
const nfsMountPoint = "/tmp/ddi-nfs"

// imageExtensions are the file suffixes the image pickers accept.
var imageExtensions = []string{".img", ".img.gz", ".img.zst", ".img.xz"}

func endpointMenu(title, localDir string) *menuDialog {
	return newMenu(title, []string{
		"Local directory: " + localDir,
		"Remote host over SSH",
		"NFS share",
	})
}

func sshTarget(cfg *config.Config, user, host string) remote.Target {
	port := cfg.Remote.SSHPort
	if port == 0 {
		port = 22
	}
	return remote.Target{
		User:           user,
		Host:           host,
		Port:           port,
		ConnectTimeout: time.Duration(cfg.Remote.ConnectTimeoutMS) * time.Millisecond,
	}
}

// blockSizeChoices pairs menu labels with the dd block-size strings
// they stand for. The configured default gets its own entry when it is
// not already on the list.
func blockSizeChoices(info device.BlockSizeInfo, configured string) ([]string, []string) {
	rec := info.RecommendedString()
	labels := []string{
		rec + " - RECOMMENDED for alignment (detected)",
		"512 bytes - Traditional sector size, slowest",
		"4K - Modern sector size, good balance",
		"64K - Fast for most drives",
		"1M - Fastest for large sequential operations",
	}
	values := []string{rec, "512", "4K", "64K", "1M"}
	if configured != "" && !slices.Contains(values, configured) {
		labels = append(labels, configured+" - configured default")
		values = append(values, configured)
	}
	return labels, values
}

func geometryMessage(dev string, info device.BlockSizeInfo) *messageDialog {
	optimal := "Not reported by drive"
	if info.Optimal > 0 {
		optimal = fmt.Sprintf("%d bytes", info.Optimal)
	}
	return newMessage("Drive Alignment Detection",
		"Device: "+dev,
		"",
		fmt.Sprintf("Logical sector size:  %d bytes", info.Logical),
		fmt.Sprintf("Physical sector size: %d bytes", info.Physical),
		"Optimal I/O size:     "+optimal,
		"",
		"Recommended block size: "+info.RecommendedString(),
	)
}

func smartReportMessage(dev string, report device.SMARTReport) *messageDialog {
	lines := []string{"Device: " + dev, "", report.Message, ""}
	if len(report.CriticalIssues) > 0 {
		lines = append(lines, "CRITICAL ISSUES:")
		for _, issue := range report.CriticalIssues {
			lines = append(lines, "  "+issue)
		}
		lines = append(lines, "")
	}
	if len(report.Warnings) > 0 {
		lines = append(lines, "WARNINGS:")
		for _, w := range report.Warnings {
			lines = append(lines, "  "+w)
		}
		lines = append(lines, "")
	}
	lines = append(lines, report.Details...)
	return newMessage("SMART Health Check", lines...)
}

// --- backup ---

type backupStage int

const (
	bDevice backupStage = iota
	bSmartReport
	bSmartConfirm
	bUnmountConfirm
	bAbort
	bGeometry
	bBlockSize
	bDest
	bSSHHost
	bSSHUser
	bBrowseAsk
	bBrowse
	bRemoteDir
	bNFSPath
	bCompression
	bBaseName
	bSpaceConfirm
	bConfirm
	bRun
	bHashMenu
	bHashDone
	bFinished
)

// checksumMenuItems mirrors the post-backup hashing choices.
var checksumMenuItems = []string{
	"MD5 (faster, less secure)",
	"SHA-256 (slower, more secure)",
	"Both MD5 and SHA-256",
	"Skip checksum creation",
}

// backupFlow images a device into a (possibly compressed) file, either
// locally, piped over ssh, or onto a temporarily mounted NFS export.
type backupFlow struct {
	cfg *config.Config
	log *logger.Logger

	stage   backupStage
	devices []device.Device
	source  device.Device
	smart   device.SMARTReport
	bsInfo  device.BlockSizeInfo
	bsVals  []string

	blockSize string
	comp      imaging.Compression
	outFile   string

	dest       endpointKind
	ssh        remote.Target
	browser    *remoteBrowser
	remoteDir  string
	remotePath string
	nfsPath    string
	nfsMount   string
}

func newBackupFlow(cfg *config.Config, log *logger.Logger) *backupFlow {
	return &backupFlow{cfg: cfg, log: log.WithComponent("backup")}
}

func (f *backupFlow) title() string { return "Backup" }

func (f *backupFlow) refreshDevices() (dialog, bool) {
	if f.stage != bDevice {
		return nil, false
	}
	f.devices = listDevices(f.log)
	return deviceMenu("Select Source Device", f.devices), true
}

func (f *backupFlow) advance(result *dialogResult) flowAction {
	if result != nil && result.canceled {
		return f.done()
	}

	switch f.stage {
	case bDevice:
		if result == nil {
			f.devices = listDevices(f.log)
			if len(f.devices) == 0 {
				f.stage = bAbort
				return showDialog(newMessage("No Devices", "No suitable block devices found."))
			}
			return showDialog(deviceMenu("Select Source Device", f.devices))
		}
		f.source = f.devices[result.index]
		f.smart = device.CheckSMART(f.source.Name)
		f.stage = bSmartReport
		return showDialog(smartReportMessage(f.source.Name, f.smart))

	case bSmartReport:
		if f.smart.Status == device.SMARTFailed {
			f.stage = bSmartConfirm
			return showDialog(newConfirm("Continue Despite SMART Failure?",
				"The drive has SMART failures.",
				"Continuing may result in data corruption or loss.",
				"",
				"Continue anyway? (Not recommended)"))
		}
		return f.checkMounts()

	case bSmartConfirm:
		if !result.yes {
			return f.done()
		}
		return f.checkMounts()

	case bUnmountConfirm:
		if !result.yes {
			return f.done()
		}
		summary, err := device.UnmountAll(f.source.Name)
		if err != nil {
			f.log.Error("unmount failed: %v", err)
			f.stage = bAbort
			return showDialog(newMessage("Unmount Failed", err.Error()))
		}
		f.log.Info("%s", summary)
		return f.detectGeometry()

	case bAbort:
		return f.done()

	case bGeometry:
		labels, values := blockSizeChoices(f.bsInfo, f.cfg.Imaging.BlockSize)
		f.bsVals = values
		f.stage = bBlockSize
		return showDialog(newMenu("Select Block Size for Backup", labels))

	case bBlockSize:
		f.blockSize = f.bsVals[result.index]
		f.stage = bDest
		return showDialog(endpointMenu("Select Backup Destination", f.cfg.Imaging.ImageDir))

	case bDest:
		switch result.index {
		case 1:
			f.dest = endpointSSH
			f.stage = bSSHHost
			return showDialog(newTextDialog("SSH Destination", "Remote hostname or IP:", ""))
		case 2:
			f.dest = endpointNFS
			f.stage = bNFSPath
			return showDialog(newTextDialog("NFS Destination", "NFS path (server:/export):", ""))
		default:
			f.dest = endpointLocal
			return f.askCompression()
		}

	case bSSHHost:
		if result.text == "" {
			return f.done()
		}
		f.ssh.Host = result.text
		f.stage = bSSHUser
		return showDialog(newTextDialog("SSH Destination", "Remote username:", ""))

	case bSSHUser:
		if result.text == "" {
			return f.done()
		}
		f.ssh = sshTarget(f.cfg, result.text, f.ssh.Host)
		f.log.Info("testing ssh connection to %s@%s", f.ssh.User, f.ssh.Host)
		if err := remote.CheckSSH(context.Background(), f.ssh); err != nil {
			f.log.Error("%v", err)
			f.stage = bAbort
			return showDialog(newMessage("SSH Error", err.Error()))
		}
		f.stage = bBrowseAsk
		return showDialog(newConfirm("Select Remote Directory",
			"Browse remote directories?",
			"(No = manual path entry)"))

	case bBrowseAsk:
		if !result.yes {
			f.stage = bRemoteDir
			return showDialog(newTextDialog("Remote Directory", "Remote directory path:", "/home"))
		}
		f.browser = newRemoteBrowser(f.ssh, "/home", nil)
		return f.showBrowser()

	case bBrowse:
		picked, finished := f.browser.choose(result.index)
		if !finished {
			return f.showBrowser()
		}
		f.remoteDir = picked
		return f.askCompression()

	case bRemoteDir:
		if result.text == "" {
			return f.done()
		}
		f.remoteDir = result.text
		return f.askCompression()

	case bNFSPath:
		if result.text == "" {
			return f.done()
		}
		f.log.Info("checking NFS export %s", result.text)
		if err := remote.CheckNFS(context.Background(), result.text); err != nil {
			f.log.Error("%v", err)
			f.stage = bAbort
			return showDialog(newMessage("NFS Error", err.Error()))
		}
		if err := remote.MountNFS(context.Background(), result.text, nfsMountPoint); err != nil {
			f.log.Error("%v", err)
			f.stage = bAbort
			return showDialog(newMessage("NFS Error", err.Error()))
		}
		f.nfsPath = result.text
		f.nfsMount = nfsMountPoint
		f.log.Info("mounted %s at %s", f.nfsPath, f.nfsMount)
		return f.askCompression()

	case bCompression:
		f.comp = imaging.Compressions[result.index]
		f.stage = bBaseName
		return showDialog(newTextDialog("Image Name",
			"Base name for the image file (blank = hostname):", ""))

	case bBaseName:
		name := imaging.GenerateFilename(result.text, f.source.Name,
			".img"+f.comp.Extension, time.Now())
		switch f.dest {
		case endpointSSH:
			f.remotePath = path.Join(f.remoteDir, name)
			return f.confirmSummary()
		case endpointNFS:
			f.outFile = filepath.Join(f.nfsMount, name)
		default:
			f.outFile = filepath.Join(f.cfg.Imaging.ImageDir, name)
		}
		return f.checkSpace()

	case bSpaceConfirm:
		if !result.yes {
			return f.done()
		}
		return f.confirmSummary()

	case bConfirm:
		if !result.yes {
			return f.done()
		}
		return f.startOperation()

	case bRun:
		if result == nil || !result.yes {
			f.stage = bFinished
			return f.done()
		}
		if f.dest == endpointSSH {
			// No local file to hash.
			f.stage = bFinished
			return f.done()
		}
		f.stage = bHashMenu
		return showDialog(newMenu("Select Checksum Algorithm", checksumMenuItems))

	case bHashMenu:
		var algos []imaging.ChecksumAlgo
		switch result.index {
		case 0:
			algos = []imaging.ChecksumAlgo{imaging.ChecksumMD5}
		case 1:
			algos = []imaging.ChecksumAlgo{imaging.ChecksumSHA256}
		case 2:
			algos = []imaging.ChecksumAlgo{imaging.ChecksumMD5, imaging.ChecksumSHA256}
		default:
			return f.done()
		}
		return f.createChecksums(algos)

	case bHashDone:
		return f.done()
	}
	return f.done()
}

// done ends the flow, releasing the NFS mount when one is active.
func (f *backupFlow) done() flowAction {
	f.releaseNFS()
	return flowDone()
}

func (f *backupFlow) releaseNFS() {
	if f.nfsMount == "" {
		return
	}
	if err := remote.UnmountNFS(f.nfsMount); err != nil {
		f.log.Warn("%v", err)
	} else {
		f.log.Info("unmounted %s", f.nfsPath)
	}
	f.nfsMount = ""
}

func (f *backupFlow) showBrowser() flowAction {
	menu, err := f.browser.menu(context.Background())
	if err != nil {
		f.log.Error("%v", err)
		f.stage = bRemoteDir
		return showDialog(newTextDialog("Remote Directory", "Remote directory path:", "/home"))
	}
	f.stage = bBrowse
	return showDialog(menu)
}

func (f *backupFlow) askCompression() flowAction {
	f.stage = bCompression
	items := make([]string, len(imaging.Compressions))
	for i, c := range imaging.Compressions {
		items[i] = c.Name
	}
	return showDialog(newMenu("Select Compression", items))
}

// destLabel is the destination as shown to the operator.
func (f *backupFlow) destLabel() string {
	switch f.dest {
	case endpointSSH:
		return fmt.Sprintf("%s@%s:%s", f.ssh.User, f.ssh.Host, f.remotePath)
	case endpointNFS:
		return f.nfsPath + "/" + filepath.Base(f.outFile)
	default:
		return f.outFile
	}
}

func (f *backupFlow) createChecksums(algos []imaging.ChecksumAlgo) flowAction {
	lines := []string{"Checksum file(s) created:"}
	failed := 0
	for _, algo := range algos {
		f.log.Info("calculating %s checksum for %s", algo.Name, f.outFile)
		line, err := imaging.CreateChecksum(context.Background(), algo, f.outFile)
		if err != nil {
			f.log.Error("%s checksum failed: %v", algo.Name, err)
			failed++
			continue
		}
		f.log.Info("%s checksum: %s", algo.Name, line)
		lines = append(lines, fmt.Sprintf("%s: %s", algo.Name,
			filepath.Base(f.outFile)+algo.Extension))
	}
	f.stage = bHashDone
	if failed == len(algos) {
		return showDialog(newMessage("Checksum Failed",
			"Failed to create checksum file(s)."))
	}
	return showDialog(newMessage("Checksums Created", lines...))
}

func (f *backupFlow) checkMounts() flowAction {
	mounted, mountPoint, err := device.IsMounted(f.source.Name)
	if err != nil {
		f.log.Warn("mount check failed: %v", err)
	}
	if mounted {
		f.stage = bUnmountConfirm
		return showDialog(newConfirm("Device Is Mounted",
			fmt.Sprintf("%s is mounted at %s.", f.source.Name, mountPoint),
			"It must be unmounted before imaging.",
			"",
			"Unmount all partitions now?"))
	}
	return f.detectGeometry()
}

func (f *backupFlow) detectGeometry() flowAction {
	f.bsInfo = device.DetectBlockSize(f.source.Name)
	f.stage = bGeometry
	return showDialog(geometryMessage(f.source.Name, f.bsInfo))
}

func (f *backupFlow) checkSpace() flowAction {
	free, err := device.FreeSpace(filepath.Dir(f.outFile))
	if err != nil {
		f.log.Warn("free space check failed: %v", err)
		return f.confirmSummary()
	}
	if free < f.source.Bytes {
		f.stage = bSpaceConfirm
		return showDialog(newConfirm("Low Free Space",
			fmt.Sprintf("Destination has %s free; the source device is %s.",
				format.Bytes(free), f.source.Size),
			"Compression may still make it fit.",
			"",
			"Continue anyway?"))
	}
	return f.confirmSummary()
}

func (f *backupFlow) confirmSummary() flowAction {
	f.stage = bConfirm
	return showDialog(newConfirm("Confirm Backup",
		"Source:      "+f.source.String(),
		"Destination: "+f.destLabel(),
		"Block size:  "+f.blockSize,
		"Compression: "+f.comp.Name,
		"",
		"Start the backup?"))
}

func (f *backupFlow) startOperation() flowAction {
	var cmd string
	if f.dest == endpointSSH {
		cmd = imaging.NetworkBackupCommand(f.source.Name,
			f.ssh.User+"@"+f.ssh.Host, f.ssh.Port, f.remotePath,
			f.blockSize, f.cfg.Imaging.ExtraOptions, f.comp)
	} else {
		cmd = imaging.BackupCommand(f.source.Name, f.outFile, f.blockSize,
			f.cfg.Imaging.ExtraOptions, f.comp)
	}
	f.stage = bRun
	return flowAction{operation: &imaging.Operation{
		Command:     cmd,
		TotalBytes:  f.source.Bytes,
		SourceLabel: f.source.String(),
		DestLabel:   f.destLabel(),
		Name:        "Backup " + f.source.Name,
		Mode:        imaging.ParseDisplayMode(f.cfg.UI.DisplayMode),
	}}
}

// --- restore ---

type restoreStage int

const (
	rSource restoreStage = iota
	rSSHHost
	rSSHUser
	rBrowseAsk
	rBrowse
	rRemoteFile
	rCompConfirm
	rNFSPath
	rFile
	rVerifyConfirm
	rVerifyPassed
	rVerifyFailed
	rDevice
	rSizeConfirm
	rUnmountConfirm
	rAbort
	rBlockSize
	rWarning
	rRun
	rFinished
)

// restoreFlow writes an image back onto a device. The image may sit in
// the local image directory, on a host reached over ssh, or on an NFS
// export mounted for the duration.
type restoreFlow struct {
	cfg *config.Config
	log *logger.Logger

	stage   restoreStage
	files   []string
	devices []device.Device
	bsVals  []string

	imageDir  string
	imageFile string
	imageSize int64
	sumAlgo   imaging.ChecksumAlgo
	sumFile   string
	target    device.Device
	blockSize string

	src        endpointKind
	ssh        remote.Target
	browser    *remoteBrowser
	remoteFile string
	comp       imaging.Compression
	nfsPath    string
	nfsMount   string
}

func newRestoreFlow(cfg *config.Config, log *logger.Logger) *restoreFlow {
	return &restoreFlow{
		cfg:      cfg,
		log:      log.WithComponent("restore"),
		imageDir: cfg.Imaging.ImageDir,
	}
}

func (f *restoreFlow) title() string { return "Restore" }

func (f *restoreFlow) refreshDevices() (dialog, bool) {
	if f.stage != rDevice {
		return nil, false
	}
	f.devices = listDevices(f.log)
	return deviceMenu("Select Target Device", f.devices), true
}

func (f *restoreFlow) selectDevice() flowAction {
	f.stage = rDevice
	f.devices = listDevices(f.log)
	return showDialog(deviceMenu("Select Target Device", f.devices))
}

func (f *restoreFlow) advance(result *dialogResult) flowAction {
	if result != nil && result.canceled {
		return f.done()
	}

	switch f.stage {
	case rSource:
		if result == nil {
			f.stage = rSource
			return showDialog(endpointMenu("Select Image Source",
				f.cfg.Imaging.ImageDir))
		}
		switch result.index {
		case 1:
			f.src = endpointSSH
			f.stage = rSSHHost
			return showDialog(newTextDialog("SSH Source", "Remote hostname or IP:", ""))
		case 2:
			f.src = endpointNFS
			f.stage = rNFSPath
			return showDialog(newTextDialog("NFS Source", "NFS path (server:/export):", ""))
		default:
			f.src = endpointLocal
			return f.listImages()
		}

	case rSSHHost:
		if result.text == "" {
			return f.done()
		}
		f.ssh.Host = result.text
		f.stage = rSSHUser
		return showDialog(newTextDialog("SSH Source", "Remote username:", ""))

	case rSSHUser:
		if result.text == "" {
			return f.done()
		}
		f.ssh = sshTarget(f.cfg, result.text, f.ssh.Host)
		f.log.Info("testing ssh connection to %s@%s", f.ssh.User, f.ssh.Host)
		if err := remote.CheckSSH(context.Background(), f.ssh); err != nil {
			f.log.Error("%v", err)
			f.stage = rAbort
			return showDialog(newMessage("SSH Error", err.Error()))
		}
		f.stage = rBrowseAsk
		return showDialog(newConfirm("Select Remote Image",
			"Browse remote files?",
			"(No = manual path entry)"))

	case rBrowseAsk:
		if !result.yes {
			f.stage = rRemoteFile
			return showDialog(newTextDialog("Remote Image",
				"Full path of the remote image file:", ""))
		}
		f.browser = newRemoteBrowser(f.ssh, "/home", imageExtensions)
		return f.showBrowser()

	case rBrowse:
		picked, finished := f.browser.choose(result.index)
		if !finished {
			return f.showBrowser()
		}
		f.remoteFile = picked
		return f.remoteCompression()

	case rRemoteFile:
		if result.text == "" {
			return f.done()
		}
		f.remoteFile = result.text
		return f.remoteCompression()

	case rCompConfirm:
		if result.yes {
			f.comp = imaging.CompressionForFile(".gz")
		}
		return f.selectDevice()

	case rNFSPath:
		if result.text == "" {
			return f.done()
		}
		f.log.Info("checking NFS export %s", result.text)
		if err := remote.CheckNFS(context.Background(), result.text); err != nil {
			f.log.Error("%v", err)
			f.stage = rAbort
			return showDialog(newMessage("NFS Error", err.Error()))
		}
		if err := remote.MountNFS(context.Background(), result.text, nfsMountPoint); err != nil {
			f.log.Error("%v", err)
			f.stage = rAbort
			return showDialog(newMessage("NFS Error", err.Error()))
		}
		f.nfsPath = result.text
		f.nfsMount = nfsMountPoint
		f.imageDir = f.nfsMount
		f.log.Info("mounted %s at %s", f.nfsPath, f.nfsMount)
		return f.listImages()

	case rFile:
		f.imageFile = filepath.Join(f.imageDir, f.files[result.index])
		f.imageSize = f.measureImage()
		if algo, sumFile, ok := imaging.FindChecksum(f.imageFile); ok {
			f.sumAlgo, f.sumFile = algo, sumFile
			f.stage = rVerifyConfirm
			return showDialog(newConfirm("Verify Before Restore?",
				fmt.Sprintf("Found %s checksum: %s", algo.Name, filepath.Base(sumFile)),
				"Verify image integrity before restoring? (Recommended)"))
		}
		return f.selectDevice()

	case rVerifyConfirm:
		if !result.yes {
			return f.selectDevice()
		}
		f.log.Info("verifying %s checksum for %s", f.sumAlgo.Name, f.imageFile)
		if err := imaging.VerifyChecksum(context.Background(), f.sumAlgo, f.sumFile); err != nil {
			f.log.Error("%v", err)
			f.stage = rVerifyFailed
			return showDialog(newConfirm("Verification Failed",
				f.sumAlgo.Name+" verification: FAILED",
				"The image file may be corrupted or tampered with.",
				"",
				"Continue with restore anyway? (NOT recommended)"))
		}
		f.log.Info("%s verification passed", f.sumAlgo.Name)
		f.stage = rVerifyPassed
		return showDialog(newMessage("Verification Passed",
			f.sumAlgo.Name+" verification: PASSED",
			"Image integrity confirmed. Safe to restore."))

	case rVerifyPassed:
		return f.selectDevice()

	case rVerifyFailed:
		if !result.yes {
			return f.done()
		}
		return f.selectDevice()

	case rDevice:
		f.target = f.devices[result.index]
		if f.imageSize > 0 && f.imageSize > f.target.Bytes {
			f.stage = rSizeConfirm
			return showDialog(newConfirm("Image Larger Than Device",
				fmt.Sprintf("Image:  %s", format.Bytes(f.imageSize)),
				fmt.Sprintf("Device: %s", f.target.Size),
				"",
				"The copy will stop when the device is full.",
				"Continue anyway?"))
		}
		return f.checkMounts()

	case rSizeConfirm:
		if !result.yes {
			return f.done()
		}
		return f.checkMounts()

	case rUnmountConfirm:
		if !result.yes {
			return f.done()
		}
		summary, err := device.UnmountAll(f.target.Name)
		if err != nil {
			f.log.Error("unmount failed: %v", err)
			f.stage = rAbort
			return showDialog(newMessage("Unmount Failed", err.Error()))
		}
		f.log.Info("%s", summary)
		return f.selectBlockSize()

	case rAbort:
		return f.done()

	case rBlockSize:
		f.blockSize = f.bsVals[result.index]
		f.stage = rWarning
		return showDialog(newFinalWarning("Confirm Restore",
			"ALL DATA on "+f.target.String()+" will be overwritten",
			"with the contents of:",
			"  "+f.sourceDisplay()))

	case rWarning:
		if !result.yes {
			return f.done()
		}
		return f.startOperation()

	case rRun:
		f.stage = rFinished
		return f.done()
	}
	return f.done()
}

func (f *restoreFlow) done() flowAction {
	f.releaseNFS()
	return flowDone()
}

func (f *restoreFlow) releaseNFS() {
	if f.nfsMount == "" {
		return
	}
	if err := remote.UnmountNFS(f.nfsMount); err != nil {
		f.log.Warn("unmount %s: %v", f.nfsMount, err)
	} else {
		f.log.Info("unmounted %s", f.nfsMount)
	}
	f.nfsMount = ""
}

func (f *restoreFlow) listImages() flowAction {
	files, err := device.ImageFiles(f.imageDir, imageExtensions...)
	if err != nil || len(files) == 0 {
		f.stage = rAbort
		return showDialog(newMessage("No Images",
			"No image files found in "+f.imageDir))
	}
	f.files = files
	f.stage = rFile
	return showDialog(newMenu("Select Image File", files))
}

func (f *restoreFlow) showBrowser() flowAction {
	menu, err := f.browser.menu(context.Background())
	if err != nil {
		f.log.Error("%v", err)
		f.stage = rRemoteFile
		return showDialog(newTextDialog("Remote Image",
			"Full path of the remote image file:", ""))
	}
	f.stage = rBrowse
	return showDialog(menu)
}

// remoteCompression settles how a remote image is decompressed. The
// extension usually answers; when it does not, the operator is asked
// whether the file is gzip compressed, matching what a plain dd over
// ssh cannot discover on its own.
func (f *restoreFlow) remoteCompression() flowAction {
	f.comp = imaging.CompressionForFile(f.remoteFile)
	if f.comp.Decompress == "" && !strings.HasSuffix(f.remoteFile, ".img") {
		f.stage = rCompConfirm
		return showDialog(newConfirm("Remote Image Format",
			filepath.Base(f.remoteFile),
			"Is the remote file gzip compressed?"))
	}
	return f.selectDevice()
}

func (f *restoreFlow) sourceDisplay() string {
	if f.src == endpointSSH {
		return f.ssh.User + "@" + f.ssh.Host + ":" + f.remoteFile
	}
	return f.imageFile
}

// measureImage finds the restored byte size: gzip images answer
// through "gzip -l", everything else by file size (0 for the other
// compressed formats, which do not store it cheaply).
func (f *restoreFlow) measureImage() int64 {
	switch filepath.Ext(f.imageFile) {
	case ".gz":
		return imaging.UncompressedSize(f.imageFile)
	case ".zst", ".xz":
		return 0
	default:
		return device.FileSize(f.imageFile)
	}
}

func (f *restoreFlow) checkMounts() flowAction {
	mounted, mountPoint, err := device.IsMounted(f.target.Name)
	if err != nil {
		f.log.Warn("mount check failed: %v", err)
	}
	if mounted {
		f.stage = rUnmountConfirm
		return showDialog(newConfirm("Device Is Mounted",
			fmt.Sprintf("%s is mounted at %s.", f.target.Name, mountPoint),
			"It must be unmounted before restoring.",
			"",
			"Unmount all partitions now?"))
	}
	return f.selectBlockSize()
}

func (f *restoreFlow) selectBlockSize() flowAction {
	info := device.DetectBlockSize(f.target.Name)
	labels, values := blockSizeChoices(info, f.cfg.Imaging.BlockSize)
	f.bsVals = values
	f.stage = rBlockSize
	return showDialog(newMenu("Select Block Size for Restore", labels))
}

func (f *restoreFlow) startOperation() flowAction {
	var cmd string
	if f.src == endpointSSH {
		cmd = imaging.NetworkRestoreCommand(f.ssh.User+"@"+f.ssh.Host, f.ssh.Port,
			f.remoteFile, f.target.Name, f.blockSize,
			f.cfg.Imaging.ExtraOptions, f.comp)
	} else {
		cmd = imaging.RestoreCommand(f.imageFile, f.target.Name, f.blockSize,
			f.cfg.Imaging.ExtraOptions, imaging.CompressionForFile(f.imageFile))
	}
	total := f.imageSize
	if total == 0 {
		total = f.target.Bytes
	}
	f.stage = rRun
	return flowAction{operation: &imaging.Operation{
		Command:     cmd,
		TotalBytes:  total,
		SourceLabel: f.sourceDisplay(),
		DestLabel:   f.target.String(),
		Name:        "Restore to " + f.target.Name,
		Mode:        imaging.ParseDisplayMode(f.cfg.UI.DisplayMode),
	}}
}

// --- clone ---

type cloneStage int

const (
	clSource cloneStage = iota
	clSourceSmart
	clSourceSmartConfirm
	clSourceUnmount
	clTarget
	clTargetSmart
	clTargetSmartConfirm
	clTargetUnmount
	clAbort
	clBlockSize
	clConfirm
	clWarning
	clRun
	clFinished
)

// cloneFlow copies one device directly onto another.
type cloneFlow struct {
	cfg *config.Config
	log *logger.Logger

	stage   cloneStage
	devices []device.Device
	targets []device.Device
	bsVals  []string

	source    device.Device
	target    device.Device
	smart     device.SMARTReport
	blockSize string
}

func newCloneFlow(cfg *config.Config, log *logger.Logger) *cloneFlow {
	return &cloneFlow{cfg: cfg, log: log.WithComponent("clone")}
}

func (f *cloneFlow) title() string { return "Clone" }

func (f *cloneFlow) refreshDevices() (dialog, bool) {
	switch f.stage {
	case clSource:
		f.devices = listDevices(f.log)
		return deviceMenu("Select SOURCE Device", f.devices), true
	case clTarget:
		f.devices = listDevices(f.log)
		f.targets = f.excludeSource()
		return deviceMenu("Select TARGET Device to OVERWRITE", f.targets), true
	}
	return nil, false
}

func (f *cloneFlow) excludeSource() []device.Device {
	targets := make([]device.Device, 0, len(f.devices))
	for _, d := range f.devices {
		if d.Name != f.source.Name {
			targets = append(targets, d)
		}
	}
	return targets
}

func (f *cloneFlow) advance(result *dialogResult) flowAction {
	if result != nil && result.canceled {
		return flowDone()
	}

	switch f.stage {
	case clSource:
		if result == nil {
			f.devices = listDevices(f.log)
			if len(f.devices) < 2 {
				f.stage = clAbort
				return showDialog(newMessage("Not Enough Devices",
					"Cloning needs at least two disks."))
			}
			return showDialog(deviceMenu("Select SOURCE Device", f.devices))
		}
		f.source = f.devices[result.index]
		f.smart = device.CheckSMART(f.source.Name)
		f.stage = clSourceSmart
		return showDialog(smartReportMessage(f.source.Name, f.smart))

	case clSourceSmart:
		if f.smart.Status == device.SMARTFailed {
			f.stage = clSourceSmartConfirm
			return showDialog(newConfirm("Continue Despite SMART Failure?",
				"The source drive has SMART failures.",
				"The clone may contain corrupted data.",
				"",
				"Continue anyway? (Not recommended)"))
		}
		return f.checkMounts(f.source, clSourceUnmount, f.selectTarget)

	case clSourceSmartConfirm:
		if !result.yes {
			return flowDone()
		}
		return f.checkMounts(f.source, clSourceUnmount, f.selectTarget)

	case clSourceUnmount:
		return f.unmountThen(result, f.source, f.selectTarget)

	case clTarget:
		f.target = f.targets[result.index]
		f.smart = device.CheckSMART(f.target.Name)
		f.stage = clTargetSmart
		return showDialog(smartReportMessage(f.target.Name, f.smart))

	case clTargetSmart:
		if f.smart.Status == device.SMARTFailed {
			f.stage = clTargetSmartConfirm
			return showDialog(newConfirm("Continue Despite SMART Failure?",
				"The target drive has SMART failures.",
				"The clone may not be readable later.",
				"",
				"Continue anyway? (Not recommended)"))
		}
		return f.checkMounts(f.target, clTargetUnmount, f.selectBlockSize)

	case clTargetSmartConfirm:
		if !result.yes {
			return flowDone()
		}
		return f.checkMounts(f.target, clTargetUnmount, f.selectBlockSize)

	case clTargetUnmount:
		return f.unmountThen(result, f.target, f.selectBlockSize)

	case clAbort:
		return flowDone()

	case clBlockSize:
		f.blockSize = f.bsVals[result.index]
		f.stage = clConfirm
		return showDialog(newConfirm("Confirm Clone Operation",
			fmt.Sprintf("Source: %s (%s)", f.source.Name, f.source.Size),
			fmt.Sprintf("Target: %s (%s)", f.target.Name, f.target.Size),
			"Model:  "+f.target.Model,
			"Block size: "+f.blockSize))

	case clConfirm:
		if !result.yes {
			return flowDone()
		}
		f.stage = clWarning
		return showDialog(newFinalWarning("IRREVERSIBLE OPERATION",
			fmt.Sprintf("CLONE from %s to %s.", f.source.Name, f.target.Name),
			fmt.Sprintf("ALL DATA on %s will be PERMANENTLY ERASED.", f.target.Name)))

	case clWarning:
		if !result.yes {
			return flowDone()
		}
		cmd := imaging.CloneCommand(f.source.Name, f.target.Name, f.blockSize,
			f.cfg.Imaging.ExtraOptions)
		f.stage = clRun
		return flowAction{operation: &imaging.Operation{
			Command:     cmd,
			TotalBytes:  f.source.Bytes,
			SourceLabel: f.source.String(),
			DestLabel:   f.target.String(),
			Name:        fmt.Sprintf("Clone %s to %s", f.source.Name, f.target.Name),
			Mode:        imaging.ParseDisplayMode(f.cfg.UI.DisplayMode),
		}}

	case clRun:
		f.stage = clFinished
		return flowDone()
	}
	return flowDone()
}

func (f *cloneFlow) checkMounts(dev device.Device, unmountStage cloneStage, next func() flowAction) flowAction {
	mounted, mountPoint, err := device.IsMounted(dev.Name)
	if err != nil {
		f.log.Warn("mount check failed: %v", err)
	}
	if mounted {
		f.stage = unmountStage
		return showDialog(newConfirm("Device Is Mounted",
			fmt.Sprintf("%s is mounted at %s.", dev.Name, mountPoint),
			"It must be unmounted before cloning.",
			"",
			"Unmount all partitions now?"))
	}
	return next()
}

func (f *cloneFlow) unmountThen(result *dialogResult, dev device.Device, next func() flowAction) flowAction {
	if !result.yes {
		return flowDone()
	}
	summary, err := device.UnmountAll(dev.Name)
	if err != nil {
		f.log.Error("unmount failed: %v", err)
		f.stage = clAbort
		return showDialog(newMessage("Unmount Failed", err.Error()))
	}
	f.log.Info("%s", summary)
	return next()
}

func (f *cloneFlow) selectTarget() flowAction {
	f.targets = f.excludeSource()
	f.stage = clTarget
	return showDialog(deviceMenu("Select TARGET Device to OVERWRITE", f.targets))
}

func (f *cloneFlow) selectBlockSize() flowAction {
	info := device.DetectBlockSize(f.source.Name)
	labels, values := blockSizeChoices(info, f.cfg.Imaging.BlockSize)
	f.bsVals = values
	f.stage = clBlockSize
	return showDialog(newMenu("Select Block Size for Clone", labels))
}

// --- wipe ---

type wipeStage int

const (
	wDevice wipeStage = iota
	wScheme
	wUnmountConfirm
	wAbort
	wBlockSize
	wWarning
	wRun
	wFinished
)

// wipeFlow overwrites a device with one of the pass schedules,
// running each pass as its own monitored operation.
type wipeFlow struct {
	cfg *config.Config
	log *logger.Logger

	stage   wipeStage
	devices []device.Device
	bsVals  []string

	target    device.Device
	scheme    imaging.WipeScheme
	blockSize string
	pass      int
}

func newWipeFlow(cfg *config.Config, log *logger.Logger) *wipeFlow {
	return &wipeFlow{cfg: cfg, log: log.WithComponent("wipe")}
}

func (f *wipeFlow) title() string { return "Wipe" }

func (f *wipeFlow) refreshDevices() (dialog, bool) {
	if f.stage != wDevice {
		return nil, false
	}
	f.devices = listDevices(f.log)
	return deviceMenu("Select Device to Wipe", f.devices), true
}

func (f *wipeFlow) advance(result *dialogResult) flowAction {
	if result != nil && result.canceled {
		return flowDone()
	}

	switch f.stage {
	case wDevice:
		if result == nil {
			f.devices = listDevices(f.log)
			if len(f.devices) == 0 {
				f.stage = wAbort
				return showDialog(newMessage("No Devices", "No suitable block devices found."))
			}
			return showDialog(deviceMenu("Select Device to Wipe", f.devices))
		}
		f.target = f.devices[result.index]
		f.stage = wScheme
		items := make([]string, len(imaging.WipeSchemes))
		for i, s := range imaging.WipeSchemes {
			items[i] = s.Name
		}
		return showDialog(newMenu("Select Wipe Scheme", items))

	case wScheme:
		f.scheme = imaging.WipeSchemes[result.index]
		mounted, mountPoint, err := device.IsMounted(f.target.Name)
		if err != nil {
			f.log.Warn("mount check failed: %v", err)
		}
		if mounted {
			f.stage = wUnmountConfirm
			return showDialog(newConfirm("Device Is Mounted",
				fmt.Sprintf("%s is mounted at %s.", f.target.Name, mountPoint),
				"It must be unmounted before wiping.",
				"",
				"Unmount all partitions now?"))
		}
		return f.selectBlockSize()

	case wUnmountConfirm:
		if !result.yes {
			return flowDone()
		}
		summary, err := device.UnmountAll(f.target.Name)
		if err != nil {
			f.log.Error("unmount failed: %v", err)
			f.stage = wAbort
			return showDialog(newMessage("Unmount Failed", err.Error()))
		}
		f.log.Info("%s", summary)
		return f.selectBlockSize()

	case wAbort:
		return flowDone()

	case wBlockSize:
		f.blockSize = f.bsVals[result.index]
		f.stage = wWarning
		return showDialog(newFinalWarning("Confirm Wipe",
			"ALL DATA on "+f.target.String()+" will be destroyed.",
			fmt.Sprintf("Scheme: %s", f.scheme.Name)))

	case wWarning:
		if !result.yes {
			return flowDone()
		}
		f.pass = 0
		f.stage = wRun
		return f.startPass()

	case wRun:
		// A failed pass ends the schedule; the monitor already showed
		// the failure.
		if !result.yes {
			return flowDone()
		}
		f.pass++
		if f.pass >= len(f.scheme.Passes) {
			f.stage = wFinished
			return flowDone()
		}
		return f.startPass()
	}
	return flowDone()
}

func (f *wipeFlow) selectBlockSize() flowAction {
	info := device.DetectBlockSize(f.target.Name)
	labels, values := blockSizeChoices(info, f.cfg.Imaging.BlockSize)
	f.bsVals = values
	f.stage = wBlockSize
	return showDialog(newMenu("Select Block Size for Wipe", labels))
}

func (f *wipeFlow) startPass() flowAction {
	pass := f.scheme.Passes[f.pass]
	cmd := imaging.WipeCommand(pass, f.target.Name, f.blockSize,
		f.cfg.Imaging.ExtraOptions)
	source := pass.Source
	if source == "" {
		source = pass.Label
	}
	return flowAction{operation: &imaging.Operation{
		Command:     cmd,
		TotalBytes:  f.target.Bytes,
		SourceLabel: source,
		DestLabel:   f.target.String(),
		Name: fmt.Sprintf("Wipe %s - pass %d/%d (%s)",
			f.target.Name, f.pass+1, len(f.scheme.Passes), pass.Label),
		// The block map is the view that matters for a wipe: it shows
		// which regions keep failing.
		Mode: imaging.ModeBlockMap,
	}}
}

// --- check ---

type checkStage int

const (
	cDevice checkStage = iota
	cReport
	cViewer
	cFinished
)

// checkFlow runs the SMART health assessment and then hands off to
// the scrollable smartctl viewer.
type checkFlow struct {
	log *logger.Logger

	stage   checkStage
	devices []device.Device
	target  device.Device

	width  int
	height int
}

func newCheckFlow(log *logger.Logger, width, height int) *checkFlow {
	return &checkFlow{log: log.WithComponent("check"), width: width, height: height}
}

func (f *checkFlow) title() string { return "Check Health" }

func (f *checkFlow) refreshDevices() (dialog, bool) {
	if f.stage != cDevice {
		return nil, false
	}
	f.devices = listDevices(f.log)
	return deviceMenu("Select Device to Check", f.devices), true
}

func (f *checkFlow) advance(result *dialogResult) flowAction {
	if result != nil && result.canceled {
		return flowDone()
	}

	switch f.stage {
	case cDevice:
		if result == nil {
			f.devices = listDevices(f.log)
			if len(f.devices) == 0 {
				f.stage = cFinished
				return showDialog(newMessage("No Devices", "No suitable block devices found."))
			}
			return showDialog(deviceMenu("Select Device to Check", f.devices))
		}
		f.target = f.devices[result.index]
		report := device.CheckSMART(f.target.Name)
		f.log.Info("SMART %s: %s", f.target.Name, report.Status)
		f.stage = cReport
		return showDialog(smartReportMessage(f.target.Name, report))

	case cReport:
		f.stage = cViewer
		return showOverlay(newSmartOverlay(f.target.Name, f.width, f.height))

	case cViewer:
		f.stage = cFinished
		return flowDone()
	}
	return flowDone()
}

// smartOverlay is the smartctl report viewer: the text overlay plus
// the x key toggling between the -a and -x report forms.
type smartOverlay struct {
	*textOverlay
	device   string
	extended bool
}

func newSmartOverlay(dev string, width, height int) *smartOverlay {
	o := &smartOverlay{device: dev}
	o.textOverlay = newOverlay(
		"smartctl -a "+dev,
		o.fetch("-a"),
		"↑/↓ scroll · x: extended report · Esc close",
		width, height)
	return o
}

func (o *smartOverlay) fetch(flag string) string {
	out, err := device.SmartctlOutput(o.device, flag)
	if err != nil {
		return "smartctl failed: " + err.Error()
	}
	return out
}

func (o *smartOverlay) handleKey(msg tea.KeyMsg) bool {
	if msg.String() == "x" || msg.String() == "a" {
		o.extended = !o.extended
		flag := "-a"
		if o.extended {
			flag = "-x"
		}
		o.title = "smartctl " + flag + " " + o.device
		o.setContent(o.fetch(flag))
		return false
	}
	return o.textOverlay.handleKey(msg)
}
