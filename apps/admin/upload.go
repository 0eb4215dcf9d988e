package main

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core/upload"
	cloudinarysvc "github.com/killingspree001/lautechmarket/services/cloudinary"
)

var errNotAnImage = errors.New("the file must be an image")

func (cli *commandLine) accounts() {
	accounts := cli.uploads.Accounts()
	fmt.Fprintf(cli.out, "%d account(s) configured\n", len(accounts))
	for i, a := range accounts {
		fmt.Fprintf(cli.out, "  %d. %s\n", i+1, a.CloudName)
	}
}

func (cli *commandLine) upload(path, folder string) error {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading image")
	}
	contentType := http.DetectContentType(content)
	if !strings.HasPrefix(contentType, "image/") {
		return errNotAnImage
	}

	res, err := cli.uploads.Upload(cli.ctx, upload.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	}, folder)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.URL)
	fmt.Fprintln(cli.out, cloudinarysvc.OptimizedURL(res.URL, cloudinarysvc.DefaultWidth, cloudinarysvc.DefaultQuality))
	return nil
}
