package zcconfig_test

import (
	"fmt"

	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/internal/fixture"
	"github.com/rawbytedev/zcconfig/pkg/configexample"
)

func Example() {
	buf := fixture.BasicBytes()

	v, err := zcconfig.VerifyAndView(configexample.Descriptor, buf, "AppConfig")
	if err != nil {
		fmt.Println(err)
		return
	}
	name, _ := v.String(configexample.AppConfigAppName)
	fmt.Println(name)
	fmt.Println(v.Uint32(configexample.AppConfigMaxConnections), v.Has(configexample.AppConfigMaxConnections))

	adv := v.Table(configexample.AppConfigAdvancedSettings)
	hosts := adv.Vector(configexample.AdvancedSettingsAllowedHosts)
	for i := 0; i < hosts.Len(); i++ {
		fmt.Println(hosts.String(i))
	}
	// Output:
	// TestApp
	// 100 false
	// host1
	// host2
}

func ExampleReader_VerifyAndView_garbage() {
	r := zcconfig.NewReader(configexample.Descriptor, zcconfig.DefaultOptions())
	_, err := r.VerifyAndView(fixture.Garbage(1024), "")
	fmt.Println(zcconfig.IsOutOfBounds(err))
	// Output: true
}
